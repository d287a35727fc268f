package services

import (
	"sort"

	"github.com/samber/lo"
	"github.com/segmentio/ksuid"

	"servicehub/internal/domain"
	"servicehub/internal/repos"
	"servicehub/internal/validate"
)

const maxMessageLen = 1000

type ChatService struct {
	Msgs  *repos.MessageRepo
	Users *repos.UserRepo
	Apts  *repos.AppointmentRepo
	Clock Clock
}

func NewChatService(msgs *repos.MessageRepo, users *repos.UserRepo, apts *repos.AppointmentRepo) *ChatService {
	return &ChatService{Msgs: msgs, Users: users, Apts: apts}
}

// Conversation summarises one counterpart in the inbox.
type Conversation struct {
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	AvatarURL   string          `json:"avatar_url"`
	LastMessage *domain.Message `json:"last_message,omitempty"`
	Unread      int             `json:"unread"`
}

type ChatView struct {
	Conversations []Conversation   `json:"conversations"`
	Active        *Conversation    `json:"active,omitempty"`
	Messages      []domain.Message `json:"messages"`
}

// Conversations lists everyone the user has exchanged messages or
// appointments with, most recent message first.
func (s *ChatService) Conversations(u *domain.User) ([]Conversation, error) {
	msgs, err := s.Msgs.Involving(u.ID)
	if err != nil {
		return nil, err
	}
	byPeer := map[string]*Conversation{}
	peer := func(id string) *Conversation {
		c, ok := byPeer[id]
		if !ok {
			c = &Conversation{UserID: id}
			byPeer[id] = c
		}
		return c
	}
	for i := range msgs {
		m := msgs[i]
		other := lo.Ternary(m.SenderID == u.ID, m.ReceiverID, m.SenderID)
		c := peer(other)
		c.LastMessage = &m
		if m.ReceiverID == u.ID && !m.IsRead {
			c.Unread++
		}
	}

	var f repos.AppointmentFilter
	switch u.Role {
	case domain.RoleProvider:
		f.ProviderID = u.ID
	case domain.RoleClient:
		f.ClientID = u.ID
	}
	if f.ProviderID != "" || f.ClientID != "" {
		apts, err := s.Apts.List(f)
		if err != nil {
			return nil, err
		}
		for _, a := range apts {
			peer(lo.Ternary(u.Role == domain.RoleProvider, a.ClientID, a.ProviderID))
		}
	}

	out := make([]Conversation, 0, len(byPeer))
	for id, c := range byPeer {
		other, err := s.Users.ByID(id)
		if err != nil {
			if repos.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		c.Name, c.AvatarURL = other.FullName, other.AvatarURL
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastMessage, out[j].LastMessage
		switch {
		case a != nil && b != nil && a.CreatedAt != b.CreatedAt:
			return a.CreatedAt > b.CreatedAt
		case (a == nil) != (b == nil):
			return a != nil
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// View returns the inbox and, when with is set, that thread with incoming
// messages marked read.
func (s *ChatService) View(u *domain.User, with string) (ChatView, error) {
	var v ChatView
	if with != "" {
		if _, err := s.Users.ByID(with); err != nil {
			return v, notFound(err)
		}
		if err := s.Msgs.MarkThreadRead(u.ID, with); err != nil {
			return v, err
		}
		msgs, err := s.Msgs.Thread(u.ID, with)
		if err != nil {
			return v, err
		}
		v.Messages = msgs
	}
	convs, err := s.Conversations(u)
	if err != nil {
		return v, err
	}
	v.Conversations = convs
	if with != "" {
		if c, ok := lo.Find(convs, func(c Conversation) bool { return c.UserID == with }); ok {
			v.Active = &c
		}
	}
	return v, nil
}

// Send stores a message to another existing user.
func (s *ChatService) Send(from *domain.User, to, body string) (domain.Message, error) {
	text, ok := validate.Text(body, maxMessageLen)
	if !ok || text == "" {
		return domain.Message{}, FieldErrors{"message": "Message must be 1 to 1000 characters"}
	}
	if to == from.ID {
		return domain.Message{}, ErrInvalidInput
	}
	if _, err := s.Users.ByID(to); err != nil {
		return domain.Message{}, notFound(err)
	}
	m := domain.Message{
		ID:         ksuid.New().String(),
		SenderID:   from.ID,
		ReceiverID: to,
		Body:       text,
		CreatedAt:  s.Clock.stamp(),
	}
	return m, s.Msgs.Create(m)
}
