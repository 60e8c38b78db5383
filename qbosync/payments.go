package qbosync

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/qbo_connector/frappe"
	"bitbucket.org/mmdatafocus/qbo_connector/models"
	"bitbucket.org/mmdatafocus/qbo_connector/qbo"
)

// SyncPayment pushes one local payment entry to QBO, linking it to the
// QBO invoices its references settle.
func SyncPayment(ctx context.Context, deps *Deps, name string) (Outcome, error) {
	var payment models.PaymentEntry
	if err := deps.Store.GetDoc(ctx, "Payment Entry", name, &payment); err != nil {
		return Failed(err), err
	}
	outcome, err := runPaymentPipeline(ctx, deps, &payment)
	if applyErr := ApplyOutcome(ctx, deps, "Payment Entry", payment.Name, outcome); applyErr != nil {
		deps.Logger.WithFields(logrus.Fields{
			"payment": payment.Name,
			"error":   applyErr.Error(),
		}).Error("failed to record sync outcome")
		if err == nil {
			err = applyErr
		}
	}
	return outcome, err
}

func runPaymentPipeline(ctx context.Context, deps *Deps, payment *models.PaymentEntry) (Outcome, error) {
	log := deps.Logger.WithFields(logrus.Fields{"payment": payment.Name})

	if payment.DontSync == 1 {
		return Outcome{Kind: OutcomeNoop, Reason: "marked do-not-sync"}, nil
	}
	if payment.SyncStatus == models.SyncStatusSynced && payment.QboPaymentId != "" {
		return Outcome{Kind: OutcomeNoop, RemoteId: payment.QboPaymentId, Status: models.SyncStatusSynced}, nil
	}
	if payment.PartyType != "Customer" || payment.Party == "" {
		err := &models.InvalidEntityError{Doctype: "Payment Entry", Name: payment.Name, Reason: "payment has no customer party"}
		return Outcome{Kind: OutcomeNoop, Reason: err.Error()}, err
	}

	var customer models.Customer
	if err := deps.Store.GetDoc(ctx, "Customer", payment.Party, &customer); err != nil {
		return Failed(err), err
	}
	if customer.QboCustomerId == "" {
		err := fmt.Errorf("customer %s is not linked to QBO; sync the customer first", payment.Party)
		return Failed(err), err
	}

	depositRef, err := deps.accountRef(ctx, deps.Settings.DepositAccountName)
	if err != nil {
		if models.IsMissingConfiguration(err) {
			return Outcome{Kind: OutcomeNoop, Reason: err.Error()}, err
		}
		return Failed(err), err
	}
	methodRef, err := deps.paymentMethodRef(ctx, payment.ModeOfPayment)
	if err != nil {
		return Failed(err), err
	}

	lines, err := paymentLines(ctx, deps, payment)
	if err != nil {
		return Failed(err), err
	}
	if len(lines) == 0 {
		log.Warn("no references carry a QBO invoice id; posting unapplied payment")
	}

	payload := &qbo.Payment{
		TotalAmt:            payment.PaidAmount.InexactFloat64(),
		TxnDate:             payment.PostingDate,
		PaymentRefNum:       payment.ReferenceNo,
		CustomerRef:         &qbo.Ref{Value: customer.QboCustomerId, Name: customer.CustomerName},
		DepositToAccountRef: depositRef,
		PaymentMethodRef:    methodRef,
		Line:                lines,
	}

	var created struct {
		Id string `json:"Id"`
	}
	if err := deps.QBO.Create(ctx, "payment", payload, &created); err != nil {
		return Failed(err), err
	}
	if created.Id == "" {
		err := &models.RemoteCallError{System: "qbo", Op: "create payment", Detail: "response carried no Id"}
		return Failed(err), err
	}
	log.WithFields(logrus.Fields{"qbo_payment": created.Id}).Info("created QBO payment")
	return CreatedRemote(created.Id), nil
}

// paymentLines maps invoice references to linked-transaction lines,
// skipping references whose invoice is not yet in QBO.
func paymentLines(ctx context.Context, deps *Deps, payment *models.PaymentEntry) ([]qbo.PaymentLine, error) {
	var lines []qbo.PaymentLine
	for _, ref := range payment.References {
		if ref.ReferenceDoctype != "Sales Invoice" {
			continue
		}
		var invoice models.SalesInvoice
		if err := deps.Store.GetDoc(ctx, "Sales Invoice", ref.ReferenceName, &invoice); err != nil {
			return nil, err
		}
		if invoice.QboSalesInvoiceId == "" {
			deps.Logger.WithFields(logrus.Fields{
				"payment": payment.Name,
				"invoice": ref.ReferenceName,
			}).Warn("referenced invoice has no QBO id; leaving it unlinked")
			continue
		}
		lines = append(lines, qbo.PaymentLine{
			Amount: ref.AllocatedAmount.InexactFloat64(),
			LinkedTxn: []qbo.LinkedTxn{
				{TxnId: invoice.QboSalesInvoiceId, TxnType: "Invoice"},
			},
		})
	}
	return lines, nil
}

// PullPaymentResult reports what PullPayment did.
type PullPaymentResult struct {
	PaymentEntry string `json:"payment_entry"`
	Created      bool   `json:"created"`
	Reason       string `json:"reason,omitempty"`
}

// PullPayment fetches one QBO payment and records it locally as a
// submitted Payment Entry against the invoices it settles. Idempotent:
// a payment already pulled, or settling nothing local, is a no-op.
func PullPayment(ctx context.Context, deps *Deps, qboPaymentId string) (*PullPaymentResult, error) {
	var existing []models.PaymentEntry
	err := deps.Store.List(ctx, "Payment Entry", frappe.ListOptions{
		Filters: [][3]string{{"custom_qbo_payment_id", "=", qboPaymentId}},
		Fields:  []string{"name"},
		Limit:   1,
	}, &existing)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return &PullPaymentResult{PaymentEntry: existing[0].Name, Reason: "already pulled"}, nil
	}

	var remote qbo.Payment
	if err := deps.QBO.Get(ctx, "payment", qboPaymentId, &remote); err != nil {
		return nil, err
	}

	var references []models.PaymentReference
	var customerName string
	for _, line := range remote.Line {
		for _, txn := range line.LinkedTxn {
			if txn.TxnType != "Invoice" {
				continue
			}
			var invoices []models.SalesInvoice
			err := deps.Store.List(ctx, "Sales Invoice", frappe.ListOptions{
				Filters: [][3]string{{"custom_qbo_sales_invoice_id", "=", txn.TxnId}},
				Fields:  []string{"name", "customer", "outstanding_amount"},
				Limit:   1,
			}, &invoices)
			if err != nil {
				return nil, err
			}
			if len(invoices) == 0 {
				deps.Logger.WithFields(logrus.Fields{
					"qbo_payment": qboPaymentId,
					"qbo_invoice": txn.TxnId,
				}).Warn("QBO payment references an invoice with no local counterpart")
				continue
			}
			invoice := invoices[0]
			if !invoice.OutstandingAmount.IsPositive() {
				continue
			}
			allocated := decimal.NewFromFloat(line.Amount)
			if allocated.GreaterThan(invoice.OutstandingAmount) {
				allocated = invoice.OutstandingAmount
			}
			references = append(references, models.PaymentReference{
				ReferenceDoctype: "Sales Invoice",
				ReferenceName:    invoice.Name,
				AllocatedAmount:  allocated,
			})
			if customerName == "" {
				customerName = invoice.Customer
			}
		}
	}

	if len(references) == 0 {
		return &PullPaymentResult{Reason: "no open local invoices matched"}, nil
	}

	modeOfPayment := ""
	if remote.PaymentMethodRef != nil {
		modeOfPayment = remote.PaymentMethodRef.Name
	}
	amount := decimal.NewFromFloat(remote.TotalAmt)
	entry := map[string]any{
		"payment_type":              "Receive",
		"party_type":                "Customer",
		"party":                     customerName,
		"posting_date":              remote.TxnDate,
		"paid_amount":               amount,
		"received_amount":           amount,
		"paid_to":                   deps.Settings.ErpDepositAccount,
		"mode_of_payment":           modeOfPayment,
		"reference_no":              remote.PaymentRefNum,
		"reference_date":            remote.TxnDate,
		"references":                references,
		"custom_qbo_payment_id":     qboPaymentId,
		"custom_sync_status":        string(models.SyncStatusSynced),
		"custom_dont_sync_with_qbo": 1,
	}

	var created models.PaymentEntry
	if err := deps.Store.CreateDoc(ctx, "Payment Entry", entry, &created); err != nil {
		return nil, err
	}
	if err := deps.Store.SubmitDoc(ctx, "Payment Entry", created.Name); err != nil {
		return nil, err
	}

	deps.Logger.WithFields(logrus.Fields{
		"qbo_payment":   qboPaymentId,
		"payment_entry": created.Name,
	}).Info("pulled QBO payment")
	return &PullPaymentResult{PaymentEntry: created.Name, Created: true}, nil
}
