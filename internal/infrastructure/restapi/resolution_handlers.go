package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ens_manager/internal/app/service"
)

// ResolutionHandler serves the read-only resolution endpoints.
type ResolutionHandler struct {
	resolution *service.ResolutionService
}

// NewResolutionHandler creates the handler.
func NewResolutionHandler(rs *service.ResolutionService) *ResolutionHandler {
	return &ResolutionHandler{resolution: rs}
}

type batchNamesRequest struct {
	Names []string `json:"names" binding:"required"`
}

type batchAddressesRequest struct {
	Addresses []string `json:"addresses" binding:"required"`
}

// ResolveHandler resolves one name, on ?network= or the current network.
func (h *ResolutionHandler) ResolveHandler(c *gin.Context) {
	result := h.resolution.Resolve(c.Request.Context(), c.Param("name"), c.Query("network"))
	c.JSON(http.StatusOK, result)
}

// BatchResolveHandler resolves a list of names on the current network.
func (h *ResolutionHandler) BatchResolveHandler(c *gin.Context) {
	var req batchNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": h.resolution.BatchResolve(c.Request.Context(), req.Names)})
}

// ResolveGloballyHandler fans the resolution out across every live network.
func (h *ResolutionHandler) ResolveGloballyHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.resolution.ResolveGlobally(c.Request.Context(), c.Param("name")))
}

// ReverseResolveHandler maps an address back to its primary name.
func (h *ResolutionHandler) ReverseResolveHandler(c *gin.Context) {
	address := c.Param("address")
	name := h.resolution.ReverseResolve(c.Request.Context(), address)
	c.JSON(http.StatusOK, gin.H{"address": address, "name": name})
}

// BatchReverseResolveHandler reverse-resolves a list of addresses.
func (h *ResolutionHandler) BatchReverseResolveHandler(c *gin.Context) {
	var req batchAddressesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": h.resolution.BatchReverseResolve(c.Request.Context(), req.Addresses)})
}

// VerifyResolutionHandler runs the per-network consistency checks.
func (h *ResolutionHandler) VerifyResolutionHandler(c *gin.Context) {
	name := c.Param("name")
	network := c.Query("network")
	c.JSON(http.StatusOK, gin.H{
		"name":   name,
		"checks": h.resolution.VerifyResolution(c.Request.Context(), name, network),
		"issues": h.resolution.ValidateNetworkSetup(c.Request.Context(), name),
	})
}
