package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iamsuteerth/skyfox-frontend/internal/notify"
)

// NotificationHandler exposes the observer hub's topic versions so
// the UI can poll them: a newer shows.refresh timestamp means the
// listing should re-fetch availability, and the profile.image
// timestamp is appended to avatar URLs to bust the image cache.
type NotificationHandler struct {
	Hub *notify.Hub
}

// Versions handles GET /v1/notifications/versions.
func (h *NotificationHandler) Versions(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"shows_refresh": h.Hub.Version(notify.TopicShowsRefresh),
		"profile_image": h.Hub.Version(notify.TopicProfileImage),
	})
}

// ProfileImageRefreshed handles POST /v1/notifications/profile-image.
// The profile edit screen calls it after uploading a new avatar so
// every other consumer of the image re-fetches it.
func (h *NotificationHandler) ProfileImageRefreshed(c echo.Context) error {
	h.Hub.Publish(notify.TopicProfileImage)
	return c.JSON(http.StatusOK, echo.Map{
		"profile_image": h.Hub.Version(notify.TopicProfileImage),
	})
}
