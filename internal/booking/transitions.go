package booking

import "github.com/iamsuteerth/skyfox-frontend/internal/model"

// Variant selects which flavour of the booking flow a wizard runs.
// Both flows share movie info and seat selection; they diverge on
// whether a payment window is opened.
type Variant string

const (
	// CustomerFlow requires an online payment inside a time-boxed
	// window backed by a server-side reservation.
	CustomerFlow Variant = "CUSTOMER"
	// AdminFlow is the counter sale: customer details are recorded
	// and the booking confirms immediately with no payment timer.
	AdminFlow Variant = "ADMIN"
)

// RequiresPayment reports whether the variant opens a payment window.
func (v Variant) RequiresPayment() bool { return v == CustomerFlow }

// stepOrder lists the wizard steps per variant, in order.  The final
// step is terminal for both flows.
var stepOrder = map[Variant][]model.Step{
	CustomerFlow: {model.StepMovieInfo, model.StepSeatSelection, model.StepPayment, model.StepConfirmation},
	AdminFlow:    {model.StepMovieInfo, model.StepSeatSelection, model.StepCustomerDetails, model.StepConfirmation},
}

// nextStep returns the step following cur for the variant, or cur
// itself when cur is terminal or unknown to the variant.
func nextStep(v Variant, cur model.Step) model.Step {
	order := stepOrder[v]
	for i, s := range order {
		if s == cur && i+1 < len(order) {
			return order[i+1]
		}
	}
	return cur
}

// prevStep returns the step preceding cur for the variant, or cur
// itself when cur is the first step or unknown.
func prevStep(v Variant, cur model.Step) model.Step {
	order := stepOrder[v]
	for i, s := range order {
		if s == cur && i > 0 {
			return order[i-1]
		}
	}
	return cur
}
