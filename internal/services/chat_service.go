package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gocart-backend/internal/apperr"
	"gocart-backend/internal/models"
)

// ChatService handles the store-to-admin support conversation. Transport is
// plain request/response; clients poll for new messages.
type ChatService struct {
	db *sql.DB
}

// NewChatService creates a new chat service
func NewChatService(db *sql.DB) *ChatService {
	return &ChatService{db: db}
}

// SendAsStore posts a message from the store owner into their conversation
func (s *ChatService) SendAsStore(userID string, creation *models.ChatMessageCreation) (*models.ChatMessage, error) {
	var storeID string
	err := s.db.QueryRow("SELECT id FROM stores WHERE user_id = ?", userID).Scan(&storeID)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("you do not have a store")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store: %w", err)
	}
	return s.send(storeID, userID, models.ChatSenderStore, creation.Body)
}

// SendAsAdmin posts a message from an administrator into a store conversation
func (s *ChatService) SendAsAdmin(adminID, storeID string, creation *models.ChatMessageCreation) (*models.ChatMessage, error) {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM stores WHERE id = ?)", storeID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check store: %w", err)
	}
	if !exists {
		return nil, apperr.NotFoundf("store not found")
	}
	return s.send(storeID, adminID, models.ChatSenderAdmin, creation.Body)
}

func (s *ChatService) send(storeID, senderID string, role models.ChatSenderRole, body string) (*models.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.Validationf("message body cannot be empty")
	}

	message := &models.ChatMessage{
		ID:           uuid.New().String(),
		StoreID:      storeID,
		SenderUserID: senderID,
		SenderRole:   role,
		Body:         body,
		CreatedAt:    time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO chat_messages (id, store_id, sender_user_id, sender_role, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		message.ID, message.StoreID, message.SenderUserID,
		message.SenderRole, message.Body, message.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return message, nil
}

// GetStoreConversation returns the conversation for the caller's store and
// marks admin messages as read.
func (s *ChatService) GetStoreConversation(userID string) ([]models.ChatMessage, error) {
	var storeID string
	err := s.db.QueryRow("SELECT id FROM stores WHERE user_id = ?", userID).Scan(&storeID)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("you do not have a store")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store: %w", err)
	}

	if _, err := s.db.Exec(`
		UPDATE chat_messages SET read_at = ?
		WHERE store_id = ? AND sender_role = ? AND read_at IS NULL`,
		time.Now(), storeID, models.ChatSenderAdmin); err != nil {
		return nil, fmt.Errorf("failed to mark messages read: %w", err)
	}

	return s.listMessages(storeID)
}

// GetConversation returns one store's conversation and marks store messages
// as read. Admin-facing.
func (s *ChatService) GetConversation(storeID string) ([]models.ChatMessage, error) {
	if _, err := s.db.Exec(`
		UPDATE chat_messages SET read_at = ?
		WHERE store_id = ? AND sender_role = ? AND read_at IS NULL`,
		time.Now(), storeID, models.ChatSenderStore); err != nil {
		return nil, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return s.listMessages(storeID)
}

// ListConversations returns, for each store with messages, the unread count
// from the store side. Admin-facing inbox view.
func (s *ChatService) ListConversations() (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT store_id, SUM(CASE WHEN sender_role = ? AND read_at IS NULL THEN 1 ELSE 0 END)
		FROM chat_messages GROUP BY store_id`, models.ChatSenderStore)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	unread := make(map[string]int)
	for rows.Next() {
		var storeID string
		var count int
		if err := rows.Scan(&storeID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		unread[storeID] = count
	}
	return unread, rows.Err()
}

func (s *ChatService) listMessages(storeID string) ([]models.ChatMessage, error) {
	rows, err := s.db.Query(`
		SELECT id, store_id, sender_user_id, sender_role, body, read_at, created_at
		FROM chat_messages WHERE store_id = ? ORDER BY created_at ASC`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var message models.ChatMessage
		err := rows.Scan(&message.ID, &message.StoreID, &message.SenderUserID,
			&message.SenderRole, &message.Body, &message.ReadAt, &message.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}
