// Package availability derives which properties are currently leased from a
// snapshot of contracts and decides which properties a contract form may offer.
package availability

import (
	"sort"

	"lease-reconciliation-service/internal/models"
)

// Policy selects how a candidate contract is checked against existing leases.
type Policy string

const (
	// PolicyEndDate blocks a property while any other active contract on it
	// has not reached its end date.
	PolicyEndDate Policy = "end_date"
	// PolicyOverlap blocks a property only when another active contract's
	// period overlaps the candidate's period.
	PolicyOverlap Policy = "overlap"
)

// LeasedPropertyIDs returns the properties referenced by an active contract
// whose end date is on or after asOf. The contract with id excludeID (0 for
// none) is ignored so an edited contract does not block its own property.
func LeasedPropertyIDs(contracts []*models.Contract, asOf string, excludeID int64) map[int64]struct{} {
	leased := make(map[int64]struct{})
	for _, c := range contracts {
		if excludeID != 0 && c.ID == excludeID {
			continue
		}
		if governs(c, asOf) {
			leased[c.PropertyID] = struct{}{}
		}
	}
	return leased
}

// SelectableProperties returns the properties a contract form may offer: those
// not leased, plus currentPropertyID (the property already on the contract
// being edited, 0 for a new contract). A non-empty tenantPropertyIDs further
// restricts the result to the tenant's pre-associated properties.
func SelectableProperties(properties []*models.Property, leased map[int64]struct{}, currentPropertyID int64, tenantPropertyIDs []int64) []*models.Property {
	var allowed map[int64]struct{}
	if len(tenantPropertyIDs) > 0 {
		allowed = make(map[int64]struct{}, len(tenantPropertyIDs))
		for _, id := range tenantPropertyIDs {
			allowed[id] = struct{}{}
		}
	}

	result := make([]*models.Property, 0, len(properties))
	for _, p := range properties {
		_, isLeased := leased[p.ID]
		if isLeased && p.ID != currentPropertyID {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[p.ID]; !ok {
				continue
			}
		}
		result = append(result, p)
	}
	return result
}

// Conflict is a property referenced by more than one governing contract.
type Conflict struct {
	PropertyID  int64   `json:"property_id"`
	ContractIDs []int64 `json:"contract_ids"`
}

// DoubleLeased reports properties that already have two or more active,
// unexpired contracts. The filter prevents new double leasing but cannot
// undo existing data, so this surfaces it.
func DoubleLeased(contracts []*models.Contract, asOf string) []Conflict {
	byProperty := make(map[int64][]int64)
	for _, c := range contracts {
		if governs(c, asOf) {
			byProperty[c.PropertyID] = append(byProperty[c.PropertyID], c.ID)
		}
	}

	var conflicts []Conflict
	for propertyID, ids := range byProperty {
		if len(ids) < 2 {
			continue
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		conflicts = append(conflicts, Conflict{PropertyID: propertyID, ContractIDs: ids})
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].PropertyID < conflicts[j].PropertyID })
	return conflicts
}

// Conflicts returns the existing contracts that prevent candidate from being
// saved as an active lease under the given policy. Non-active candidates never
// conflict.
func Conflicts(contracts []*models.Contract, candidate *models.Contract, policy Policy, asOf string) []*models.Contract {
	if candidate.Status != models.ContractActive {
		return nil
	}

	var blocking []*models.Contract
	for _, c := range contracts {
		if c.PropertyID != candidate.PropertyID {
			continue
		}
		if candidate.ID != 0 && c.ID == candidate.ID {
			continue
		}
		if !governs(c, asOf) {
			continue
		}
		if policy == PolicyOverlap && !overlaps(c, candidate) {
			continue
		}
		blocking = append(blocking, c)
	}
	return blocking
}

func governs(c *models.Contract, asOf string) bool {
	return c.Status == models.ContractActive && c.EndDate >= asOf
}

// ISO dates compare lexically. An empty end date is treated as open ended.
func overlaps(a, b *models.Contract) bool {
	aEnd, bEnd := a.EndDate, b.EndDate
	if aEnd != "" && b.StartDate > aEnd {
		return false
	}
	if bEnd != "" && a.StartDate > bEnd {
		return false
	}
	return true
}
