package qbosync

import (
	"strings"

	"bitbucket.org/mmdatafocus/qbo_connector/models"
)

// Evaluation classifies a local entity's readiness for sync.
type Evaluation struct {
	Complete      bool
	Status        models.SyncStatus
	MissingFields []string
}

// EvaluateCustomer checks the customer's required fields: email, phone
// and a complete billing address. A partial address counts as missing
// entirely. A customer without a display name is invalid data, not a
// sync status.
func EvaluateCustomer(c *models.Customer) (Evaluation, error) {
	if strings.TrimSpace(c.CustomerName) == "" {
		return Evaluation{}, &models.InvalidEntityError{
			Doctype: "Customer",
			Name:    c.Name,
			Reason:  "customer has no display name",
		}
	}

	var missing []string
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "Email")
	}
	if strings.TrimSpace(c.Phone) == "" {
		missing = append(missing, "Phone")
	}
	if !c.Address().Complete() {
		missing = append(missing, "Address")
	}

	switch len(missing) {
	case 0:
		return Evaluation{Complete: true}, nil
	case 1:
		return Evaluation{Status: models.SyncStatusMissing(missing[0]), MissingFields: missing}, nil
	default:
		return Evaluation{Status: models.SyncStatusMissingMultiple, MissingFields: missing}, nil
	}
}
