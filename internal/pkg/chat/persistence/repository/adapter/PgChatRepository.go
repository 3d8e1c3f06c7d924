package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	port "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ port.ChatRepository = (*PgChatRepository)(nil)

func (r *PgChatRepository) SaveWebhook(ctx context.Context, payload json.RawMessage) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgChatRepository: nil pool")
	}
	var id int64
	err := r.pool.QueryRow(ctx,
		"INSERT INTO chat.webhook (json) VALUES ($1) RETURNING id",
		payload,
	).Scan(&id)
	return id, err
}

func (r *PgChatRepository) FindActiveSession(ctx context.Context, key chat.ConversationKey) (*chat.Session, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var s chat.Session
	err := r.pool.QueryRow(ctx, `
		SELECT session_id::text, wa_id, wa_id_received, phone_number_id, created_at, expires_at, is_active
		FROM chat.session
		WHERE wa_id = $1 AND wa_id_received = $2 AND phone_number_id = $3 AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`, key.WaID, key.WaIDReceived, key.PhoneNumberID).
		Scan(&s.ID, &s.WaID, &s.WaIDReceived, &s.PhoneNumberID, &s.CreatedAt, &s.ExpiresAt, &s.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PgChatRepository) CreateSession(ctx context.Context, s chat.Session) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat.session (session_id, wa_id, wa_id_received, phone_number_id, created_at, expires_at, is_active)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
	`, s.ID, s.WaID, s.WaIDReceived, s.PhoneNumberID, s.CreatedAt, s.ExpiresAt, s.Active)
	return err
}

// DeactivateSession flips the session and its messages inactive atomically so
// an expired session never keeps half-active history behind it.
func (r *PgChatRepository) DeactivateSession(ctx context.Context, sessionID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx,
		"UPDATE chat.session SET is_active = FALSE WHERE session_id = $1::uuid",
		sessionID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	if _, err := tx.Exec(ctx,
		"UPDATE chat.session_message SET is_active = FALSE, updated_at = NOW() WHERE session_id = $1::uuid",
		sessionID,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PgChatRepository) AppendMessage(ctx context.Context, m chat.SessionMessage) (*chat.SessionMessage, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.session_message (
			session_id, wa_id, wa_id_received, phone_number_id, wam_id, content, payload,
			is_user_message, message_status, bot_replied, flow_state, is_active, create_in, updated_at
		) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING id
	`, m.SessionID, m.WaID, m.WaIDReceived, m.PhoneNumberID, m.WamID, m.Content, m.Payload,
		m.IsUserMessage, m.Status, m.BotReplied, m.FlowState, m.Active, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		return nil, err
	}
	m.UpdatedAt = m.CreatedAt
	return &m, nil
}

func (r *PgChatRepository) UpdateMessageStatusByWamID(ctx context.Context, wamID string, status chat.MessageStatus) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgChatRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat.session_message
		SET message_status = $2, updated_at = NOW()
		WHERE wam_id = $1
	`, wamID, status)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *PgChatRepository) UpdateMessageStatus(ctx context.Context, messageID int64, status chat.MessageStatus) error {
	return r.execOnMessage(ctx, messageID,
		"UPDATE chat.session_message SET message_status = $2, updated_at = NOW() WHERE id = $1", status)
}

func (r *PgChatRepository) MarkBotReplied(ctx context.Context, messageID int64) error {
	return r.execOnMessage(ctx, messageID,
		"UPDATE chat.session_message SET bot_replied = TRUE, updated_at = NOW() WHERE id = $1")
}

func (r *PgChatRepository) UpdateFlowState(ctx context.Context, messageID int64, state json.RawMessage) error {
	return r.execOnMessage(ctx, messageID,
		"UPDATE chat.session_message SET flow_state = $2, updated_at = NOW() WHERE id = $1", state)
}

func (r *PgChatRepository) execOnMessage(ctx context.Context, messageID int64, sql string, args ...any) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, sql, append([]any{messageID}, args...)...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

func (r *PgChatRepository) UpsertContact(ctx context.Context, c chat.Contact) (*chat.Contact, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.contact (
			wa_id, create_for_phone_number, name, profile, activate_bot, activate_automatic_message,
			create_in, last_message, last_message_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8)
		ON CONFLICT (wa_id, create_for_phone_number)
		DO UPDATE SET name = EXCLUDED.name,
		              last_message = EXCLUDED.last_message,
		              last_message_timestamp = EXCLUDED.last_message_timestamp
		RETURNING id, wa_id, create_for_phone_number, name, profile, activate_bot, activate_automatic_message, create_in, last_message, last_message_timestamp
	`, c.WaID, c.PhoneNumberID, c.Name, c.Profile, c.ActivateBot, c.ActivateAutoMsg, now, c.LastMessageEpoch).
		Scan(&c.ID, &c.WaID, &c.PhoneNumberID, &c.Name, &c.Profile, &c.ActivateBot, &c.ActivateAutoMsg, &c.CreatedAt, &c.LastMessageAt, &c.LastMessageEpoch)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgChatRepository) GetContact(ctx context.Context, contactID int64) (*chat.Contact, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var c chat.Contact
	err := r.pool.QueryRow(ctx, `
		SELECT id, wa_id, create_for_phone_number, name, profile, activate_bot, activate_automatic_message, create_in, last_message, last_message_timestamp
		FROM chat.contact
		WHERE id = $1
	`, contactID).Scan(&c.ID, &c.WaID, &c.PhoneNumberID, &c.Name, &c.Profile, &c.ActivateBot, &c.ActivateAutoMsg, &c.CreatedAt, &c.LastMessageAt, &c.LastMessageEpoch)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgChatRepository) GetContactsByPhoneNumber(ctx context.Context, phoneNumberID string, skip, limit int) ([]chat.Contact, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, wa_id, create_for_phone_number, name, profile, activate_bot, activate_automatic_message, create_in, last_message, last_message_timestamp
		FROM chat.contact
		WHERE create_for_phone_number = $1
		ORDER BY last_message DESC NULLS LAST
		LIMIT $2 OFFSET $3
	`, phoneNumberID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []chat.Contact
	for rows.Next() {
		var c chat.Contact
		if err := rows.Scan(&c.ID, &c.WaID, &c.PhoneNumberID, &c.Name, &c.Profile, &c.ActivateBot, &c.ActivateAutoMsg, &c.CreatedAt, &c.LastMessageAt, &c.LastMessageEpoch); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *PgChatRepository) UpdateContactName(ctx context.Context, contactID int64, name string) error {
	return r.execOnContact(ctx, contactID,
		"UPDATE chat.contact SET name = $2 WHERE id = $1", name)
}

func (r *PgChatRepository) SetContactBot(ctx context.Context, contactID int64, enabled bool) error {
	return r.execOnContact(ctx, contactID,
		"UPDATE chat.contact SET activate_bot = $2 WHERE id = $1", enabled)
}

func (r *PgChatRepository) SetContactAutomaticMessage(ctx context.Context, contactID int64, enabled bool) error {
	return r.execOnContact(ctx, contactID,
		"UPDATE chat.contact SET activate_automatic_message = $2 WHERE id = $1", enabled)
}

func (r *PgChatRepository) execOnContact(ctx context.Context, contactID int64, sql string, args ...any) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, sql, append([]any{contactID}, args...)...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

func (r *PgChatRepository) GetLineSettings(ctx context.Context, phoneNumberID string) (*chat.LineSettings, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var s chat.LineSettings
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, phone_number_id, COALESCE(wa_id, ''), COALESCE(default_profile, 'human'), default_bot, COALESCE(webhook_verify_token, '')
		FROM chat.settings
		WHERE phone_number_id = $1
	`, phoneNumberID).Scan(&s.ID, &s.OrganizationID, &s.PhoneNumberID, &s.WaID, &s.DefaultProfile, &s.DefaultBot, &s.VerifyToken)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PgChatRepository) GetUserSessions(ctx context.Context, waID, phoneNumberID string, limit int) ([]chat.Session, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT session_id::text, wa_id, wa_id_received, phone_number_id, created_at, expires_at, is_active
		FROM chat.session
		WHERE wa_id = $1 AND phone_number_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, waID, phoneNumberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []chat.Session
	for rows.Next() {
		var s chat.Session
		if err := rows.Scan(&s.ID, &s.WaID, &s.WaIDReceived, &s.PhoneNumberID, &s.CreatedAt, &s.ExpiresAt, &s.Active); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *PgChatRepository) GetSessionMessages(ctx context.Context, sessionID string) ([]chat.SessionMessage, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id::text, wa_id, wa_id_received, phone_number_id, wam_id, content, payload,
		       is_user_message, message_status, bot_replied, flow_state, is_active, create_in, updated_at
		FROM chat.session_message
		WHERE session_id = $1::uuid
		ORDER BY create_in ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.SessionMessage
	for rows.Next() {
		var m chat.SessionMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.WaID, &m.WaIDReceived, &m.PhoneNumberID, &m.WamID, &m.Content, &m.Payload,
			&m.IsUserMessage, &m.Status, &m.BotReplied, &m.FlowState, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *PgChatRepository) GetActiveChats(ctx context.Context, phoneNumberID string, skip, limit int) ([]chat.ChatSummary, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	if skip < 0 {
		skip = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT
			m.wa_id,
			COALESCE(MAX(c.name), '') AS contact_name,
			m.phone_number_id,
			COUNT(DISTINCT m.session_id) AS total_sessions,
			COUNT(m.id) AS total_messages,
			SUM(CASE WHEN m.is_user_message THEN 1 ELSE 0 END) AS user_messages,
			SUM(CASE WHEN m.is_user_message THEN 0 ELSE 1 END) AS bot_messages,
			SUM(CASE WHEN m.bot_replied THEN 1 ELSE 0 END) AS bot_replies,
			BOOL_OR(s.is_active) AS has_active_session,
			MAX(m.create_in) AS last_message_at,
			MAX(CASE WHEN s.is_active THEN s.expires_at END) AS session_expires_at
		FROM chat.session_message m
		JOIN chat.session s ON s.session_id = m.session_id
		LEFT JOIN chat.contact c ON c.wa_id = m.wa_id AND c.create_for_phone_number = m.phone_number_id
		WHERE m.phone_number_id = $1 AND m.is_active = TRUE
		GROUP BY m.wa_id, m.phone_number_id
		ORDER BY MAX(m.create_in) DESC
		LIMIT $2 OFFSET $3
	`, phoneNumberID, limit, skip)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var chats []chat.ChatSummary
	for rows.Next() {
		var c chat.ChatSummary
		if err := rows.Scan(&c.WaID, &c.ContactName, &c.PhoneNumberID, &c.TotalSessions, &c.TotalMessages,
			&c.UserMessages, &c.BotMessages, &c.BotReplies, &c.HasActiveSession, &c.LastMessageAt, &c.SessionExpiresAt); err != nil {
			return nil, 0, err
		}
		chats = append(chats, c)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	var total int
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT wa_id)
		FROM chat.session_message
		WHERE phone_number_id = $1 AND is_active = TRUE
	`, phoneNumberID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return chats, total, nil
}
