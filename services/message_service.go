package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_marketplace/metrics"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxMessageLength = 5000

type MessageService struct {
	DB        *gorm.DB
	Publisher Publisher
}

func NewMessageService(db *gorm.DB, pub Publisher) *MessageService {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &MessageService{DB: db, Publisher: pub}
}

// Conversation summarizes the thread between the caller and one counterpart.
type Conversation struct {
	User         models.UserSummary `json:"user"`
	LastMessage  models.Message     `json:"last_message"`
	UnreadCount  int                `json:"unread_count"`
	LastActivity time.Time          `json:"last_activity"`
}

// Send persists a message and pushes it to the receiver's live connections.
// A failed push does not fail the send.
func (s *MessageService) Send(ctx context.Context, who Identity, receiverID uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, InvalidArgument("message content cannot be empty")
	}
	if len(content) > maxMessageLength {
		return nil, InvalidArgument("message content is too long")
	}
	if receiverID == uuid.Nil {
		return nil, InvalidArgument("receiverId is required")
	}
	if receiverID == who.ID {
		return nil, InvalidArgument("cannot send a message to yourself")
	}

	db := s.DB.WithContext(ctx)
	var receiver models.User
	if err := db.Select("id", "name", "image", "role").First(&receiver, "id = ?", receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("receiver not found")
		}
		return nil, err
	}

	msg := models.Message{
		SenderID:   who.ID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := db.Create(&msg).Error; err != nil {
		return nil, err
	}
	var sender models.User
	if err := db.Select("id", "name", "image", "role").First(&sender, "id = ?", who.ID).Error; err == nil {
		msg.Sender = &sender
	}
	msg.Receiver = &receiver

	metrics.MessagesSent.Inc()
	publishTo(s.Publisher, EventReceiveMessage, &msg, receiverID)
	return &msg, nil
}

// Conversation marks every unread message from other to the caller as read
// and returns one page of the thread, oldest first, in the same transaction.
func (s *MessageService) Conversation(ctx context.Context, who Identity, other uuid.UUID, page utils.Page) ([]models.Message, int64, error) {
	if other == uuid.Nil {
		return nil, 0, InvalidArgument("userId is required")
	}
	if page.Limit == 0 {
		page = utils.NewPage(page.Page, 50)
	}

	messages := []models.Message{}
	var total int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Message{}).
			Where("sender_id = ? AND receiver_id = ? AND read = ?", other, who.ID, false).
			Update("read", true).Error; err != nil {
			return err
		}

		thread := tx.Model(&models.Message{}).Where(
			"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			who.ID, other, other, who.ID,
		)
		if err := thread.Count(&total).Error; err != nil {
			return err
		}
		return thread.Order("created_at ASC").Offset(page.Offset()).Limit(page.Limit).Find(&messages).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// Conversations lists one entry per counterpart, most recent activity first.
func (s *MessageService) Conversations(ctx context.Context, who Identity) ([]Conversation, error) {
	db := s.DB.WithContext(ctx)
	var messages []models.Message
	if err := db.Where("sender_id = ? OR receiver_id = ?", who.ID, who.ID).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, err
	}

	byUser := map[uuid.UUID]*Conversation{}
	var counterparts []uuid.UUID
	for _, m := range messages {
		other := m.Counterpart(who.ID)
		conv, ok := byUser[other]
		if !ok {
			conv = &Conversation{LastMessage: m, LastActivity: m.CreatedAt}
			byUser[other] = conv
			counterparts = append(counterparts, other)
		}
		if m.ReceiverID == who.ID && !m.Read {
			conv.UnreadCount++
		}
	}
	if len(counterparts) == 0 {
		return []Conversation{}, nil
	}

	var users []models.User
	if err := db.Select("id", "name", "image", "role").Where("id IN ?", counterparts).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		if conv, ok := byUser[u.ID]; ok {
			conv.User = u.Summary()
		}
	}

	out := make([]Conversation, 0, len(counterparts))
	for _, id := range counterparts {
		conv := byUser[id]
		if conv.User.ID == uuid.Nil {
			conv.User.ID = id
		}
		out = append(out, *conv)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out, nil
}

// UnreadCount returns how many messages addressed to the caller are unread.
func (s *MessageService) UnreadCount(ctx context.Context, who Identity) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND read = ?", who.ID, false).
		Count(&n).Error
	return n, err
}
