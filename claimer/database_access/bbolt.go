package databaseaccess

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ShellTrade/bridge-claimer/claimer/core"
	"github.com/ShellTrade/bridge-claimer/common"
	"go.etcd.io/bbolt"
)

var (
	claimQueueBucket   = []byte("ClaimQueue")
	claimHistoryBucket = []byte("ClaimHistory")
)

// BBoltDatabase is the durable claim store. bbolt serializes write
// transactions, which makes SelectNextClaim the atomic read-check-write the
// single-flight gate relies on.
type BBoltDatabase struct {
	db *bbolt.DB

	onChangeLock sync.Mutex
	onChange     []func()
}

var _ core.ClaimRepository = (*BBoltDatabase)(nil)

func (bd *BBoltDatabase) Init(filePath string) error {
	db, err := bbolt.Open(filePath, 0660, nil)
	if err != nil {
		return fmt.Errorf("could not open db: %w", err)
	}

	bd.db = db

	return db.Update(func(tx *bbolt.Tx) error {
		for _, bn := range [][]byte{claimQueueBucket, claimHistoryBucket} {
			_, err := tx.CreateBucketIfNotExists(bn)
			if err != nil {
				return fmt.Errorf("could not bucket: %s, err: %w", string(bn), err)
			}
		}

		return nil
	})
}

func (bd *BBoltDatabase) Close() error {
	return bd.db.Close()
}

// OnChange implements core.ClaimRepository.
func (bd *BBoltDatabase) OnChange(fn func()) {
	bd.onChangeLock.Lock()
	defer bd.onChangeLock.Unlock()

	bd.onChange = append(bd.onChange, fn)
}

func (bd *BBoltDatabase) notifyChange() {
	bd.onChangeLock.Lock()
	callbacks := append([]func(){}, bd.onChange...)
	bd.onChangeLock.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// AddClaim implements core.ClaimRepository.
func (bd *BBoltDatabase) AddClaim(claim *core.Claim) error {
	if err := claim.Validate(); err != nil {
		return &core.StorageError{Err: err}
	}

	err := bd.db.Update(func(tx *bbolt.Tx) error {
		if len(tx.Bucket(claimQueueBucket).Get(claim.ToDBKey())) > 0 {
			return fmt.Errorf("trying to add a claim that already exists: %s", claim.ID)
		}

		bytes, err := json.Marshal(claim)
		if err != nil {
			return fmt.Errorf("could not marshal claim: %w", err)
		}

		if err = tx.Bucket(claimQueueBucket).Put(claim.ToDBKey(), bytes); err != nil {
			return fmt.Errorf("claim write error: %w", err)
		}

		return nil
	})
	if err != nil {
		return &core.StorageError{Err: err}
	}

	bd.notifyChange()

	return nil
}

// SelectNextClaim implements core.ClaimRepository. The whole
// read-oldest-pending and mark-inprogress happens inside one write
// transaction; two concurrent invocations can never both win.
func (bd *BBoltDatabase) SelectNextClaim(
	now time.Time, lease time.Duration,
) (claim *core.Claim, reclaimed bool, err error) {
	nowMillis := now.UnixMilli()

	err = bd.db.Update(func(tx *bbolt.Tx) error {
		var oldest *core.Claim

		bucket := tx.Bucket(claimQueueBucket)

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var candidate core.Claim

			if err := json.Unmarshal(v, &candidate); err != nil {
				return fmt.Errorf("could not unmarshal claim %s: %w", string(k), err)
			}

			if !common.IsValidClaimStatus(candidate.ToStatus) {
				return fmt.Errorf("claim %s has unknown status: %s", candidate.ID, candidate.ToStatus)
			}

			switch candidate.ToStatus {
			case common.ClaimStatusInProgress:
				if candidate.LeaseUntil > nowMillis {
					// someone holds the settlement slot
					oldest = nil

					return nil
				}

				// abandoned mid-flight, eligible for reclamation
				candidateCopy := candidate
				if oldest == nil || candidateCopy.ToTimestamp < oldest.ToTimestamp {
					oldest = &candidateCopy
				}

			case common.ClaimStatusPending:
				candidateCopy := candidate
				if oldest == nil || candidateCopy.ToTimestamp < oldest.ToTimestamp {
					oldest = &candidateCopy
				}
			}
		}

		if oldest == nil {
			return nil
		}

		reclaimed = oldest.ToStatus == common.ClaimStatusInProgress

		oldest.ToStatus = common.ClaimStatusInProgress
		oldest.LeaseUntil = nowMillis + lease.Milliseconds()

		bytes, err := json.Marshal(oldest)
		if err != nil {
			return fmt.Errorf("could not marshal claim: %w", err)
		}

		if err = bucket.Put(oldest.ToDBKey(), bytes); err != nil {
			return fmt.Errorf("claim write error: %w", err)
		}

		claim = oldest

		return nil
	})
	if err != nil {
		return nil, false, &core.StorageError{Err: err}
	}

	if claim != nil {
		bd.notifyChange()
	}

	return claim, reclaimed, nil
}

// ConfirmClaim implements core.ClaimRepository. The outcome write to the
// permanent history and the removal from the pending queue happen in a
// single transaction.
func (bd *BBoltDatabase) ConfirmClaim(claimID string, outcome *core.ClaimOutcome) error {
	err := bd.db.Update(func(tx *bbolt.Tx) error {
		claim, err := getQueuedClaim(tx, claimID)
		if err != nil {
			return err
		}

		if err := common.IsClaimTransitionPossible(claim.ToStatus, common.ClaimStatusConfirmed); err != nil {
			return err
		}

		claim.ToStatus = common.ClaimStatusConfirmed
		claim.ToDetails = outcome
		claim.LeaseUntil = 0

		bytes, err := json.Marshal(claim)
		if err != nil {
			return fmt.Errorf("could not marshal claim: %w", err)
		}

		if err = tx.Bucket(claimHistoryBucket).Put(claim.ToHistoryDBKey(), bytes); err != nil {
			return fmt.Errorf("claim history write error: %w", err)
		}

		if err = tx.Bucket(claimQueueBucket).Delete(claim.ToDBKey()); err != nil {
			return fmt.Errorf("claim queue delete error: %w", err)
		}

		return nil
	})
	if err != nil {
		return &core.StorageError{Err: err}
	}

	bd.notifyChange()

	return nil
}

// MarkFailed implements core.ClaimRepository. Failed claims stay in the
// queue bucket with their diagnostic outcome, awaiting operator action.
func (bd *BBoltDatabase) MarkFailed(claimID string, outcome *core.ClaimOutcome) error {
	err := bd.db.Update(func(tx *bbolt.Tx) error {
		claim, err := getQueuedClaim(tx, claimID)
		if err != nil {
			return err
		}

		if err := common.IsClaimTransitionPossible(claim.ToStatus, common.ClaimStatusFailed); err != nil {
			return err
		}

		claim.ToStatus = common.ClaimStatusFailed
		claim.ToDetails = outcome
		claim.LeaseUntil = 0

		return putQueuedClaim(tx, claim)
	})
	if err != nil {
		return &core.StorageError{Err: err}
	}

	bd.notifyChange()

	return nil
}

// ResetClaim implements core.ClaimRepository.
func (bd *BBoltDatabase) ResetClaim(claimID string) error {
	err := bd.db.Update(func(tx *bbolt.Tx) error {
		claim, err := getQueuedClaim(tx, claimID)
		if err != nil {
			return err
		}

		if err := common.IsClaimTransitionPossible(claim.ToStatus, common.ClaimStatusPending); err != nil {
			return err
		}

		claim.ToStatus = common.ClaimStatusPending
		claim.ToDetails = nil
		claim.LeaseUntil = 0

		return putQueuedClaim(tx, claim)
	})
	if err != nil {
		return &core.StorageError{Err: err}
	}

	bd.notifyChange()

	return nil
}

// GetClaim implements core.ClaimRepository. It checks the live queue first,
// then the permanent history.
func (bd *BBoltDatabase) GetClaim(claimID string) (*core.Claim, error) {
	var result *core.Claim

	err := bd.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(claimQueueBucket).Get([]byte(claimID))
		if len(data) > 0 {
			return json.Unmarshal(data, &result)
		}

		cursor := tx.Bucket(claimHistoryBucket).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var claim core.Claim
			if err := json.Unmarshal(v, &claim); err != nil {
				return fmt.Errorf("could not unmarshal claim %s: %w", string(k), err)
			}

			if claim.ID == claimID {
				result = &claim

				return nil
			}
		}

		return nil
	})
	if err != nil {
		return nil, &core.StorageError{Err: err}
	}

	return result, nil
}

// GetClaimsByStatus implements core.ClaimRepository.
func (bd *BBoltDatabase) GetClaimsByStatus(status common.ClaimStatus) ([]*core.Claim, error) {
	var result []*core.Claim

	err := bd.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(claimQueueBucket).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var claim core.Claim
			if err := json.Unmarshal(v, &claim); err != nil {
				return fmt.Errorf("could not unmarshal claim %s: %w", string(k), err)
			}

			if claim.ToStatus == status {
				claimCopy := claim
				result = append(result, &claimCopy)
			}
		}

		return nil
	})
	if err != nil {
		return nil, &core.StorageError{Err: err}
	}

	return result, nil
}

// GetHistory implements core.ClaimRepository.
func (bd *BBoltDatabase) GetHistory(fromAddress string) ([]*core.Claim, error) {
	var result []*core.Claim

	prefix := append([]byte(fromAddress), '_')

	err := bd.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(claimHistoryBucket).Cursor()
		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			var claim core.Claim
			if err := json.Unmarshal(v, &claim); err != nil {
				return fmt.Errorf("could not unmarshal claim %s: %w", string(k), err)
			}

			claimCopy := claim
			result = append(result, &claimCopy)
		}

		return nil
	})
	if err != nil {
		return nil, &core.StorageError{Err: err}
	}

	return result, nil
}

func getQueuedClaim(tx *bbolt.Tx, claimID string) (*core.Claim, error) {
	data := tx.Bucket(claimQueueBucket).Get([]byte(claimID))
	if len(data) == 0 {
		return nil, fmt.Errorf("claim does not exist in queue: %s", claimID)
	}

	var claim core.Claim
	if err := json.Unmarshal(data, &claim); err != nil {
		return nil, fmt.Errorf("could not unmarshal claim %s: %w", claimID, err)
	}

	return &claim, nil
}

func putQueuedClaim(tx *bbolt.Tx, claim *core.Claim) error {
	bytes, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("could not marshal claim: %w", err)
	}

	if err = tx.Bucket(claimQueueBucket).Put(claim.ToDBKey(), bytes); err != nil {
		return fmt.Errorf("claim write error: %w", err)
	}

	return nil
}
