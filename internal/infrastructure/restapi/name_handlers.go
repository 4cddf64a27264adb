package restapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ens_manager/internal/app/service"
)

// NameHandler serves per-name reports, validation, the network directory and
// the watch list.
type NameHandler struct {
	manager *service.ManagerService
	watcher *service.WatcherService
}

// NewNameHandler creates the handler. watcher may be nil when watching is
// disabled; the watch endpoints then answer 503.
func NewNameHandler(ms *service.ManagerService, ws *service.WatcherService) *NameHandler {
	return &NameHandler{manager: ms, watcher: ws}
}

type setNetworkRequest struct {
	Network string `json:"network" binding:"required"`
}

// DetailsHandler returns the aggregate per-name report.
func (h *NameHandler) DetailsHandler(c *gin.Context) {
	details, err := h.manager.NameDetails(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, details)
}

// StatusHandler returns the quick ownership/resolution snapshot.
func (h *NameHandler) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.RegistrationStatus(c.Request.Context(), c.Param("name")))
}

// ValidateHandler normalizes the name and lists every syntax violation.
func (h *NameHandler) ValidateHandler(c *gin.Context) {
	valid, normalized, issues := h.manager.ValidateName(c.Param("name"))
	c.JSON(http.StatusOK, gin.H{"valid": valid, "normalized": normalized, "issues": issues})
}

// HistoryHandler returns the decoded chain events for the name.
func (h *NameHandler) HistoryHandler(c *gin.Context) {
	events, err := h.manager.NameHistory(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": c.Param("name"), "events": events})
}

// SubdomainsHandler lists the observed subnodes of the name.
func (h *NameHandler) SubdomainsHandler(c *gin.Context) {
	subs, err := h.manager.Subdomains(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": c.Param("name"), "subdomains": subs})
}

// ActivityHandler returns the merged activity report. Optional ?start= and
// ?end= bounds are RFC 3339 timestamps.
func (h *NameHandler) ActivityHandler(c *gin.Context) {
	start, err := parseTimeQuery(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start timestamp"})
		return
	}
	end, err := parseTimeQuery(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end timestamp"})
		return
	}

	report, err := h.manager.ActivityReport(c.Request.Context(), c.Param("name"), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// NetworksHandler lists the live networks and the current selection.
func (h *NameHandler) NetworksHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"networks": h.manager.AvailableNetworks(),
		"current":  h.manager.CurrentNetwork(),
	})
}

// SetNetworkHandler switches the current network.
func (h *NameHandler) SetNetworkHandler(c *gin.Context) {
	var req setNetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.manager.SetNetwork(req.Network) {
		c.JSON(http.StatusNotFound, gin.H{"error": "network not available", "network": req.Network})
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": h.manager.CurrentNetwork()})
}

// WatchedHandler lists the watched names.
func (h *NameHandler) WatchedHandler(c *gin.Context) {
	if h.watcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "watcher disabled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"watched": h.watcher.Watched()})
}

// WatchHandler adds a name to the watch list.
func (h *NameHandler) WatchHandler(c *gin.Context) {
	if h.watcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "watcher disabled"})
		return
	}
	h.watcher.Watch(c.Param("name"))
	c.JSON(http.StatusOK, gin.H{"watched": h.watcher.Watched()})
}

// UnwatchHandler removes a name from the watch list.
func (h *NameHandler) UnwatchHandler(c *gin.Context) {
	if h.watcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "watcher disabled"})
		return
	}
	h.watcher.Unwatch(c.Param("name"))
	c.JSON(http.StatusOK, gin.H{"watched": h.watcher.Watched()})
}

func parseTimeQuery(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
