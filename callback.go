package coingate

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CallbackRequest carries the untrusted fields of an inbound payment
// notification. Only the identifiers and the token are read from the
// request; everything money-relevant is re-fetched from the processor.
type CallbackRequest struct {
	OrderID       int64  `json:"order_id" form:"order_id"`
	Token         string `json:"token" form:"token"`
	RemoteOrderID int64  `json:"id" form:"id"`
}

// PaymentCallback processes one inbound payment-status notification. The
// four validation gates run in order and each failure aborts with a
// GatewayError before anything is written. The callback is only a trigger:
// the remote order is fetched fresh from the processor and its status drives
// the local transition through the operator-configured mapping. Safe to
// invoke repeatedly for the same event; re-applying the same mapped status
// is a redundant but harmless host status update.
func (g *Gateway) PaymentCallback(ctx context.Context, req CallbackRequest) error {
	remoteStatus, err := g.reconcile(ctx, req)

	outcome := "ok"
	if err != nil {
		outcome = err.Error()
	}
	g.record(ctx, CallbackEvent{
		OrderID:       req.OrderID,
		RemoteOrderID: req.RemoteOrderID,
		RemoteStatus:  remoteStatus,
		Outcome:       outcome,
	})

	return err
}

func (g *Gateway) reconcile(ctx context.Context, req CallbackRequest) (string, error) {
	// Gate 1: the local order must exist. Gate 2 reads its metadata, so
	// existence is checked first.
	order, err := g.orders.Order(ctx, req.OrderID)
	if err != nil || order == nil || order.ID() == 0 {
		return "", NewGatewayError(ErrCodeOrderNotFound,
			fmt.Sprintf("order #%d does not exist", req.OrderID))
	}

	// Gate 2: the sole authentication check. An empty stored token never
	// matches, so orders that never went through checkout reject everything.
	stored := order.Meta(OrderTokenMetaKey)
	if stored == "" || req.Token != stored {
		return "", NewGatewayError(ErrCodeTokenMismatch, "callback token does not match")
	}

	// Gate 3: the order must belong to this payment method.
	if order.PaymentMethod() != GatewayID {
		return "", NewGatewayError(ErrCodeMethodMismatch,
			fmt.Sprintf("order #%d payment method is not %s", req.OrderID, MethodTitle))
	}

	// Gate 4: fetch ground truth. The request body is never trusted for
	// status or amounts; a forged or stale body can at most trigger a
	// re-fetch of the real remote order.
	remote, err := g.client().GetOrder(ctx, req.RemoteOrderID)
	if err != nil || remote == nil || !remoteMatchesLocal(remote.OrderID, order.ID()) {
		return "", NewGatewayError(ErrCodeRemoteOrderMismatch,
			fmt.Sprintf("remote order for order #%d does not exist", req.OrderID))
	}

	status, err := ParseRemoteStatus(remote.Status)
	if err != nil {
		// Unrecognized statuses must be ignorable without alarms.
		g.log.Debug("ignoring unrecognized remote status",
			zap.Int64("order_id", order.ID()),
			zap.String("status", remote.Status))
		return remote.Status, nil
	}

	mapped, ok := g.settings.OrderStatuses.Resolve(status)
	if !ok {
		return remote.Status, nil
	}

	switch status {
	case StatusPaid:
		return remote.Status, g.reconcilePaid(ctx, order, remote.PriceAmount, mapped)
	case StatusConfirming:
		return remote.Status, g.transition(ctx, order, mapped,
			"Shopper transferred the payment for the invoice. Awaiting blockchain network confirmation.")
	case StatusInvalid:
		return remote.Status, g.transition(ctx, order, mapped,
			"Payment rejected by the network or did not confirm within 7 days.")
	case StatusExpired:
		return remote.Status, g.transition(ctx, order, mapped,
			"Buyer did not pay within the required time and the invoice expired.")
	case StatusCanceled:
		return remote.Status, g.transition(ctx, order, mapped,
			"Buyer canceled the invoice.")
	case StatusRefunded:
		return remote.Status, g.transition(ctx, order, mapped,
			"Payment was refunded to the buyer.")
	}
	return remote.Status, nil
}

// reconcilePaid applies the paid branch: the remote paid amount must cover
// the local order total, the order is moved to the mapped status and marked
// payment-complete, and the recovery emails fire when the order is revived
// from the configured expired or canceled status.
func (g *Gateway) reconcilePaid(ctx context.Context, order Order, paid decimal.Decimal, mapped string) error {
	if paid.LessThan(order.Total()) {
		return NewGatewayError(ErrCodeAmountMismatch,
			fmt.Sprintf("remote order amounts for order #%d do not match", order.ID()))
	}

	statusWas := order.Status()

	if err := g.applyStatus(ctx, order, mapped); err != nil {
		return err
	}
	if err := order.AddNote(ctx,
		"Payment is confirmed on the network, and has been credited to the merchant. "+
			"Purchased goods/services can be securely delivered to the buyer."); err != nil {
		return err
	}
	if err := order.PaymentComplete(ctx); err != nil {
		return err
	}

	expiredMapped := g.settings.OrderStatuses[StatusExpired]
	canceledMapped := g.settings.OrderStatuses[StatusCanceled]
	revived := statusWas != "" && (statusWas == expiredMapped || statusWas == canceledMapped)

	statusNow := order.Status()
	if revived && statusNow == "processing" {
		if err := g.mailer.CustomerProcessingOrder(ctx, order.ID()); err != nil {
			return fmt.Errorf("trigger customer processing email: %w", err)
		}
	}
	if revived && (statusNow == "processing" || statusNow == "completed") {
		if err := g.mailer.NewOrder(ctx, order.ID()); err != nil {
			return fmt.Errorf("trigger new order email: %w", err)
		}
	}
	return nil
}

// transition moves the order to the mapped status and appends the audit
// note for the branch.
func (g *Gateway) transition(ctx context.Context, order Order, mapped, note string) error {
	if err := g.applyStatus(ctx, order, mapped); err != nil {
		return err
	}
	return order.AddNote(ctx, note)
}

// applyStatus updates the order status unless the mapping resolved to the
// ignore sentinel.
func (g *Gateway) applyStatus(ctx context.Context, order Order, status string) error {
	if status == StatusIgnore {
		return nil
	}
	return order.UpdateStatus(ctx, status)
}

// remoteMatchesLocal compares the processor's merchant order reference with
// the local order id. The processor echoes back the id the gateway supplied
// at creation, as a string.
func remoteMatchesLocal(remoteRef string, localID int64) bool {
	id, err := strconv.ParseInt(remoteRef, 10, 64)
	return err == nil && id == localID
}
