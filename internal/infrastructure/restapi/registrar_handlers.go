package restapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ens_manager/internal/app/service"
	"ens_manager/internal/domain/entity"
)

// RegistrarHandler serves the state-changing endpoints. Every write returns
// the transaction outcome with HTTP 200; precondition failures are carried
// in the outcome body, not as HTTP errors, so callers see one result shape.
type RegistrarHandler struct {
	registrar *service.RegistrarService
}

// NewRegistrarHandler creates the handler.
func NewRegistrarHandler(rs *service.RegistrarService) *RegistrarHandler {
	return &RegistrarHandler{registrar: rs}
}

type registerRequest struct {
	Years int `json:"years"`
}

type transferRequest struct {
	To string `json:"to" binding:"required"`
}

type setAddressRequest struct {
	Address string `json:"address" binding:"required"`
	Network string `json:"network"`
}

type setTextRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

type setContenthashRequest struct {
	Hash string `json:"hash" binding:"required"`
}

type createSubdomainRequest struct {
	Label string `json:"label" binding:"required"`
	Owner string `json:"owner"`
}

type bulkNamesRequest struct {
	Names []string `json:"names" binding:"required"`
	Years int      `json:"years"`
}

// AvailabilityHandler reports whether the name is open for registration.
func (h *RegistrarHandler) AvailabilityHandler(c *gin.Context) {
	name := c.Param("name")
	available, err := h.registrar.CheckAvailable(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "available": available})
}

// CostHandler returns the wei rent price for ?years= (default from config).
func (h *RegistrarHandler) CostHandler(c *gin.Context) {
	name := c.Param("name")
	years := intQuery(c, "years")
	cost, err := h.registrar.RegistrationCost(c.Request.Context(), name, years)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "years": years, "costWei": cost.String()})
}

// RegisterHandler registers the name for the requested duration.
func (h *RegistrarHandler) RegisterHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeOutcome(c, h.registrar.Register(c.Request.Context(), c.Param("name"), req.Years))
}

// RenewHandler extends the name's registration by the requested duration.
func (h *RegistrarHandler) RenewHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeOutcome(c, h.registrar.Renew(c.Request.Context(), c.Param("name"), req.Years))
}

// GasEstimatesHandler reports projected per-operation costs in wei.
func (h *RegistrarHandler) GasEstimatesHandler(c *gin.Context) {
	estimates, err := h.registrar.EstimateGasCosts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	out := make(map[string]string, len(estimates))
	for op, cost := range estimates {
		out[op] = cost.String()
	}
	c.JSON(http.StatusOK, out)
}

// TransferHandler hands ownership of the name to another address.
func (h *RegistrarHandler) TransferHandler(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeOutcome(c, h.registrar.Transfer(c.Request.Context(), c.Param("name"), req.To))
}

// SetAddressHandler sets the addr record, or a network-specific record when
// a network is named in the body.
func (h *RegistrarHandler) SetAddressHandler(c *gin.Context) {
	var req setAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := c.Param("name")
	if req.Network != "" {
		writeOutcome(c, h.registrar.SetNetworkAddress(c.Request.Context(), name, req.Network, req.Address))
		return
	}
	writeOutcome(c, h.registrar.SetAddress(c.Request.Context(), name, req.Address))
}

// SetTextHandler writes one text record.
func (h *RegistrarHandler) SetTextHandler(c *gin.Context) {
	var req setTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeOutcome(c, h.registrar.SetTextRecord(c.Request.Context(), c.Param("name"), req.Key, req.Value))
}

// SetContenthashHandler writes the contenthash from a hex payload.
func (h *RegistrarHandler) SetContenthashHandler(c *gin.Context) {
	var req setContenthashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	raw, err := service.DecodeContenthashInput(req.Hash)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeOutcome(c, h.registrar.SetContenthash(c.Request.Context(), c.Param("name"), raw))
}

// CreateSubdomainHandler assigns a subnode under the name.
func (h *RegistrarHandler) CreateSubdomainHandler(c *gin.Context) {
	var req createSubdomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeOutcome(c, h.registrar.CreateSubdomain(c.Request.Context(), c.Param("name"), req.Label, req.Owner))
}

// BulkRegisterHandler registers several names sequentially.
func (h *RegistrarHandler) BulkRegisterHandler(c *gin.Context) {
	var req bulkNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.registrar.BulkRegister(c.Request.Context(), req.Names, req.Years))
}

// BulkRenewHandler renews several names sequentially.
func (h *RegistrarHandler) BulkRenewHandler(c *gin.Context) {
	var req bulkNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.registrar.BulkRenew(c.Request.Context(), req.Names, req.Years))
}

// BatchAvailabilityHandler checks availability for several names.
func (h *RegistrarHandler) BatchAvailabilityHandler(c *gin.Context) {
	var req bulkNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.registrar.BatchCheckAvailability(c.Request.Context(), req.Names))
}

// BatchCostsHandler fetches registration costs for several names.
func (h *RegistrarHandler) BatchCostsHandler(c *gin.Context) {
	var req bulkNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	costs := h.registrar.BatchRegistrationCosts(c.Request.Context(), req.Names, req.Years)
	out := make(map[string]string, len(costs))
	for name, cost := range costs {
		if cost != nil {
			out[name] = cost.String()
		}
	}
	c.JSON(http.StatusOK, out)
}

func writeOutcome(c *gin.Context, outcome entity.TransactionOutcome) {
	c.JSON(http.StatusOK, outcome)
}

func intQuery(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
