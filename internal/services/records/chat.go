package records

import (
	"net/http"
	"slices"
	"strings"

	"github.com/krishimitra/krishi_mitra/internal/httpjson"
	"github.com/krishimitra/krishi_mitra/internal/i18n"
	"github.com/krishimitra/krishi_mitra/internal/model/entities"
	"github.com/krishimitra/krishi_mitra/internal/store"
)

const (
	SessionTitle   = "Krishi Mitra Chat"
	recentSessions = 10
)

type sessionRequest struct {
	Language string `json:"language"`
}

type messageRequest struct {
	Content     string               `json:"content"`
	MessageType entities.MessageType `json:"message_type"`
	FileURL     string               `json:"file_url"`
}

type exchange struct {
	User      entities.ChatMessage `json:"user"`
	Assistant entities.ChatMessage `json:"assistant"`
}

// POST /chat/sessions  {"language":"hi"}; an empty body starts an English chat.
func (s *Service) createSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if r.ContentLength != 0 {
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	now := s.now().UTC()
	saved, err := insert(r.Context(), s.store, store.ChatSessions, entities.ChatSession{
		Title:     SessionTitle,
		Language:  string(i18n.Resolve(req.Language)),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.fail(w, "create chat session", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, saved)
}

func (s *Service) listSessions(w http.ResponseWriter, r *http.Request) {
	q := store.Query{Table: store.ChatSessions, OrderBy: "updated_at", Desc: true, Limit: recentSessions}
	sessions, err := store.SelectRecords[entities.ChatSession](r.Context(), s.store, q)
	if err != nil {
		s.fail(w, "list chat sessions", err)
		return
	}
	httpjson.Write(w, http.StatusOK, sessions)
}

// POST /chat/sessions/{id}/messages stores the farmer's message and the
// assistant's reply in the session language.
func (s *Service) sendMessage(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		httpjson.Error(w, http.StatusBadRequest, "message is empty")
		return
	}
	switch req.MessageType {
	case "":
		req.MessageType = entities.MessageText
	case entities.MessageText, entities.MessageImage, entities.MessageVoice:
	default:
		httpjson.Error(w, http.StatusBadRequest, "unknown message type "+string(req.MessageType))
		return
	}

	ctx := r.Context()
	user, err := insert(ctx, s.store, store.ChatMessages, entities.ChatMessage{
		SessionID:   session.ID,
		Role:        entities.RoleUser,
		Content:     content,
		MessageType: req.MessageType,
		FileURL:     req.FileURL,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		s.fail(w, "store chat message", err)
		return
	}
	reply, err := insert(ctx, s.store, store.ChatMessages, entities.ChatMessage{
		SessionID:   session.ID,
		Role:        entities.RoleAssistant,
		Content:     i18n.Reply(content, session.Language),
		MessageType: entities.MessageText,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		s.fail(w, "store chat reply", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, exchange{User: user, Assistant: reply})
}

// GET /chat/sessions/{id}/messages: the latest ?limit messages, oldest first.
func (s *Service) listMessages(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	q := store.Query{Table: store.ChatMessages}.Newest(httpjson.IntParam(r, "limit", 200, 1, 1000))
	msgs, err := store.SelectRecords[entities.ChatMessage](r.Context(), s.store, q.Where("session_id", session.ID))
	if err != nil {
		s.fail(w, "list chat messages", err)
		return
	}
	slices.Reverse(msgs)
	httpjson.Write(w, http.StatusOK, msgs)
}

func (s *Service) session(w http.ResponseWriter, r *http.Request) (entities.ChatSession, bool) {
	id := r.PathValue("id")
	got, err := store.SelectRecords[entities.ChatSession](r.Context(), s.store,
		store.Query{Table: store.ChatSessions}.Where("id", id))
	if err != nil {
		s.fail(w, "load chat session", err)
		return entities.ChatSession{}, false
	}
	if len(got) == 0 {
		httpjson.Error(w, http.StatusNotFound, "chat session not found")
		return entities.ChatSession{}, false
	}
	return got[0], true
}
