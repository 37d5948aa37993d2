package helper

import (
	"errors"
	"strings"
	"time"

	"somnus_tickets/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InvitePending = "PENDING"
	InvitePaid    = "PAID"
	InviteExpired = "EXPIRED"
)

// InviteTTL is the payment deadline for a table seat invite.
const InviteTTL = 48 * time.Hour

var (
	ErrInviteExpired  = errors.New("invite expired")
	ErrInviteRedeemed = errors.New("invite already redeemed")
)

func NewInviteToken() string {
	return strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")[:48]
}

// GetInviteByToken loads an invite and lazily expires it: a PENDING invite
// past its deadline is flipped to EXPIRED before anything is reported, so a
// stale invite is never honored. The flip is conditional, a concurrent
// redemption that already won keeps its PAID state.
func GetInviteByToken(db *gorm.DB, token string) (*model.TableSlotInvite, error) {
	var invite model.TableSlotInvite
	if err := db.Preload("TicketType").Where("invite_token = ?", token).First(&invite).Error; err != nil {
		return nil, err
	}

	if invite.Status == InvitePending && time.Now().After(invite.ExpiresAt) {
		result := db.Model(&model.TableSlotInvite{}).
			Where("id = ? AND status = ?", invite.ID, InvitePending).
			Update("status", InviteExpired)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected > 0 {
			invite.Status = InviteExpired
		} else {
			// lost the race to a redemption or another expiry check
			if err := db.First(&invite, invite.ID).Error; err != nil {
				return nil, err
			}
		}
	}

	switch invite.Status {
	case InviteExpired:
		return &invite, ErrInviteExpired
	case InvitePaid:
		return &invite, ErrInviteRedeemed
	}
	return &invite, nil
}

// RedeemInvite converts a PENDING invite into a completed seat sale and an
// issued ticket. The PENDING→PAID flip is a conditional single-row update by
// token, so of two racing redemptions exactly one succeeds; the loser gets a
// definitive error, never a silent success.
func RedeemInvite(db *gorm.DB, token string, method string) (*model.Sale, *model.Ticket, error) {
	now := time.Now()

	// the expiry flip must survive the aborted redemption, so it runs
	// outside the transaction
	expiry := db.Model(&model.TableSlotInvite{}).
		Where("invite_token = ? AND status = ? AND expires_at < ?", token, InvitePending, now).
		Update("status", InviteExpired)
	if expiry.Error != nil {
		return nil, nil, expiry.Error
	}
	if expiry.RowsAffected > 0 {
		return nil, nil, ErrInviteExpired
	}

	var sale model.Sale
	var ticket model.Ticket

	err := db.Transaction(func(tx *gorm.DB) error {
		var invite model.TableSlotInvite
		if err := tx.Preload("TicketType").Where("invite_token = ?", token).First(&invite).Error; err != nil {
			return err
		}
		if invite.Status == InviteExpired {
			return ErrInviteExpired
		}

		seatPrice := 0.0
		if invite.TicketType != nil {
			seatPrice = invite.TicketType.SeatPrice
		}

		sale = model.Sale{
			PublicCode:    NewSaleCode(),
			EventID:       invite.EventID,
			BuyerName:     invite.GuestName,
			BuyerEmail:    invite.GuestEmail,
			TotalAmount:   seatPrice,
			Status:        SaleCompleted,
			PaymentMethod: method,
			PaidAt:        &now,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		result := tx.Model(&model.TableSlotInvite{}).
			Where("invite_token = ? AND status = ?", token, InvitePending).
			Updates(map[string]any{
				"status":       InvitePaid,
				"paid_sale_id": sale.ID,
				"paid_at":      now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if invite.Status == InviteExpired {
				return ErrInviteExpired
			}
			return ErrInviteRedeemed
		}

		ticket = model.Ticket{
			TicketCode:   NewTicketCode(),
			Status:       TicketIssued,
			Price:        seatPrice,
			IssuedAt:     now,
			TableNumber:  &invite.TableNumber,
			SeatNumber:   &invite.SeatNumber,
			SaleID:       sale.ID,
			EventID:      invite.EventID,
			TicketTypeID: invite.TicketTypeID,
			HolderName:   invite.GuestName,
		}
		return tx.Create(&ticket).Error
	})
	if err != nil {
		return nil, nil, err
	}
	sale.Tickets = []model.Ticket{ticket}
	return &sale, &ticket, nil
}
