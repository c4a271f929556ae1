package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ShellTrade/bridge-claimer/api/core"
	"github.com/ShellTrade/bridge-claimer/api/utils"
	claimerCore "github.com/ShellTrade/bridge-claimer/claimer/core"
	"github.com/ShellTrade/bridge-claimer/common"
	"github.com/hashicorp/go-hclog"
)

type resetClaimRequest struct {
	ClaimID string `json:"claimId"`
}

type claimsResponse struct {
	Claims []*claimerCore.Claim `json:"claims"`
}

// ClaimsControllerImpl exposes the claim queue for inspection and lets an
// operator re-queue a failed claim once the underlying condition is fixed.
type ClaimsControllerImpl struct {
	repository claimerCore.ClaimRepository
	// notifyFn wakes the processing loop after a manual reset
	notifyFn func()
	logger   hclog.Logger
}

var _ core.APIController = (*ClaimsControllerImpl)(nil)

func NewClaimsController(
	repository claimerCore.ClaimRepository, notifyFn func(), logger hclog.Logger,
) *ClaimsControllerImpl {
	return &ClaimsControllerImpl{
		repository: repository,
		notifyFn:   notifyFn,
		logger:     logger,
	}
}

func (*ClaimsControllerImpl) GetPathPrefix() string {
	return "Claims"
}

func (c *ClaimsControllerImpl) GetEndpoints() []*core.APIEndpoint {
	return []*core.APIEndpoint{
		{Path: "Get", Method: http.MethodGet, Handler: c.getClaim, APIKeyAuth: true},
		{Path: "GetByStatus", Method: http.MethodGet, Handler: c.getClaimsByStatus, APIKeyAuth: true},
		{Path: "GetHistory", Method: http.MethodGet, Handler: c.getHistory, APIKeyAuth: true},
		{Path: "Reset", Method: http.MethodPost, Handler: c.resetClaim, APIKeyAuth: true},
	}
}

func (c *ClaimsControllerImpl) getClaim(w http.ResponseWriter, r *http.Request) {
	claimID := r.URL.Query().Get("id")
	if claimID == "" {
		utils.WriteErrorResponse(w, r, http.StatusBadRequest, errors.New("id is required"), c.logger)

		return
	}

	claim, err := c.repository.GetClaim(claimID)
	if err != nil {
		utils.WriteErrorResponse(w, r, http.StatusInternalServerError, err, c.logger)

		return
	}

	if claim == nil {
		utils.WriteErrorResponse(w, r, http.StatusNotFound,
			fmt.Errorf("claim not found: %s", claimID), c.logger)

		return
	}

	utils.WriteResponse(w, r, http.StatusOK, claim, c.logger)
}

func (c *ClaimsControllerImpl) getClaimsByStatus(w http.ResponseWriter, r *http.Request) {
	status := common.ClaimStatus(r.URL.Query().Get("status"))
	if !common.IsValidClaimStatus(status) {
		utils.WriteErrorResponse(w, r, http.StatusBadRequest,
			fmt.Errorf("invalid status: %s", status), c.logger)

		return
	}

	claims, err := c.repository.GetClaimsByStatus(status)
	if err != nil {
		utils.WriteErrorResponse(w, r, http.StatusInternalServerError, err, c.logger)

		return
	}

	utils.WriteResponse(w, r, http.StatusOK, claimsResponse{Claims: claims}, c.logger)
}

func (c *ClaimsControllerImpl) getHistory(w http.ResponseWriter, r *http.Request) {
	fromAddress := r.URL.Query().Get("fromAddress")
	if fromAddress == "" {
		utils.WriteErrorResponse(w, r, http.StatusBadRequest, errors.New("fromAddress is required"), c.logger)

		return
	}

	claims, err := c.repository.GetHistory(fromAddress)
	if err != nil {
		utils.WriteErrorResponse(w, r, http.StatusInternalServerError, err, c.logger)

		return
	}

	utils.WriteResponse(w, r, http.StatusOK, claimsResponse{Claims: claims}, c.logger)
}

func (c *ClaimsControllerImpl) resetClaim(w http.ResponseWriter, r *http.Request) {
	requestBody, ok := utils.DecodeModel[resetClaimRequest](w, r, c.logger)
	if !ok {
		return
	}

	if requestBody.ClaimID == "" {
		utils.WriteErrorResponse(w, r, http.StatusBadRequest, errors.New("claimId is required"), c.logger)

		return
	}

	c.logger.Info("manual claim reset requested", "id", requestBody.ClaimID)

	if err := c.repository.ResetClaim(requestBody.ClaimID); err != nil {
		utils.WriteErrorResponse(w, r, http.StatusBadRequest, err, c.logger)

		return
	}

	if c.notifyFn != nil {
		c.notifyFn()
	}

	utils.WriteResponse(w, r, http.StatusOK, map[string]string{"status": "ok"}, c.logger)
}
