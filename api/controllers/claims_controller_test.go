package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	claimerCore "github.com/ShellTrade/bridge-claimer/claimer/core"
	"github.com/ShellTrade/bridge-claimer/common"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func TestClaimsController(t *testing.T) {
	t.Parallel()

	claim := &claimerCore.Claim{
		ID:          "0xclaim1",
		FromAddress: "0xfrom",
		ToAddress:   "Dest1",
		ToAmount:    "1000",
		ToStatus:    common.ClaimStatusPending,
	}

	t.Run("get claim", func(t *testing.T) {
		t.Parallel()

		repoMock := &claimerCore.ClaimRepositoryMock{}
		repoMock.On("GetClaim", "0xclaim1").Return(claim, error(nil))

		controller := NewClaimsController(repoMock, nil, hclog.NewNullLogger())

		r := httptest.NewRequest(http.MethodGet, "/Claims/Get?id=0xclaim1", nil)
		w := httptest.NewRecorder()

		controller.getClaim(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var result claimerCore.Claim

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		require.Equal(t, claim.ID, result.ID)
	})

	t.Run("get claim without id", func(t *testing.T) {
		t.Parallel()

		controller := NewClaimsController(&claimerCore.ClaimRepositoryMock{}, nil, hclog.NewNullLogger())

		r := httptest.NewRequest(http.MethodGet, "/Claims/Get", nil)
		w := httptest.NewRecorder()

		controller.getClaim(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get unknown claim", func(t *testing.T) {
		t.Parallel()

		repoMock := &claimerCore.ClaimRepositoryMock{}
		repoMock.On("GetClaim", "0xmissing").Return(nil, error(nil))

		controller := NewClaimsController(repoMock, nil, hclog.NewNullLogger())

		r := httptest.NewRequest(http.MethodGet, "/Claims/Get?id=0xmissing", nil)
		w := httptest.NewRecorder()

		controller.getClaim(w, r)

		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("get claims by status", func(t *testing.T) {
		t.Parallel()

		repoMock := &claimerCore.ClaimRepositoryMock{}
		repoMock.On("GetClaimsByStatus", common.ClaimStatusFailed).
			Return([]*claimerCore.Claim{claim}, error(nil))

		controller := NewClaimsController(repoMock, nil, hclog.NewNullLogger())

		r := httptest.NewRequest(http.MethodGet, "/Claims/GetByStatus?status=failed", nil)
		w := httptest.NewRecorder()

		controller.getClaimsByStatus(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var result claimsResponse

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		require.Len(t, result.Claims, 1)
	})

	t.Run("get claims by invalid status", func(t *testing.T) {
		t.Parallel()

		controller := NewClaimsController(&claimerCore.ClaimRepositoryMock{}, nil, hclog.NewNullLogger())

		r := httptest.NewRequest(http.MethodGet, "/Claims/GetByStatus?status=nope", nil)
		w := httptest.NewRecorder()

		controller.getClaimsByStatus(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reset claim wakes the processing loop", func(t *testing.T) {
		t.Parallel()

		repoMock := &claimerCore.ClaimRepositoryMock{}
		repoMock.On("ResetClaim", "0xclaim1").Return(error(nil))

		notified := false
		controller := NewClaimsController(repoMock, func() { notified = true }, hclog.NewNullLogger())

		body, err := json.Marshal(resetClaimRequest{ClaimID: "0xclaim1"})
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodPost, "/Claims/Reset", bytes.NewReader(body))
		w := httptest.NewRecorder()

		controller.resetClaim(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.True(t, notified)
		repoMock.AssertExpectations(t)
	})

	t.Run("reset claim with invalid transition", func(t *testing.T) {
		t.Parallel()

		repoMock := &claimerCore.ClaimRepositoryMock{}
		repoMock.On("ResetClaim", "0xclaim1").
			Return(&claimerCore.StorageError{Err: errors.New("invalid claim status transition confirmed -> pending")})

		controller := NewClaimsController(repoMock, nil, hclog.NewNullLogger())

		body, err := json.Marshal(resetClaimRequest{ClaimID: "0xclaim1"})
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodPost, "/Claims/Reset", bytes.NewReader(body))
		w := httptest.NewRecorder()

		controller.resetClaim(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}
