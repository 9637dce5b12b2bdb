// Package session хранит в сессии браузера личность пользователя, корзину и flash-сообщения.
package session

import (
	"encoding/gob"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/linemk/ld-shop/internal/domain/models"
)

const (
	keyIdentity = "identity"
	keyCart     = "cart"
)

// типы флешей
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

type Flash struct {
	Type    string
	Message string
}

func init() {
	gob.Register(models.Identity{})
	gob.Register(models.Cart{})
	gob.Register(Flash{})
}

// Manager открывает сессию запроса в заданном хранилище
type Manager struct {
	log   *slog.Logger
	store sessions.Store
	name  string
}

func NewManager(log *slog.Logger, store sessions.Store, name string) *Manager {
	return &Manager{log: log, store: store, name: name}
}

// NewCookieStore - хранилище по умолчанию: все данные сессии в подписанной и зашифрованной cookie
func NewCookieStore(maxAge int, secure bool, keyPairs ...[]byte) *sessions.CookieStore {
	store := sessions.NewCookieStore(keyPairs...)
	store.Options = cookieOptions(maxAge, secure)
	store.MaxAge(maxAge)
	return store
}

func cookieOptions(maxAge int, secure bool) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Get не возвращает ошибку: испорченная или устаревшая cookie дает новую пустую сессию
func (m *Manager) Get(r *http.Request) *Session {
	s, err := m.store.Get(r, m.name)
	if err != nil {
		m.log.Debug("session decode failed, starting new one", slog.Any("error", err))
	}
	if s == nil {
		s = sessions.NewSession(m.store, m.name)
		s.Options = cookieOptions(0, false)
	}
	return &Session{s: s, r: r}
}

type Session struct {
	s *sessions.Session
	r *http.Request
}

func (s *Session) Identity() (models.Identity, bool) {
	id, ok := s.s.Values[keyIdentity].(models.Identity)
	if !ok || id.ID == 0 {
		return models.Identity{}, false
	}
	return id, true
}

func (s *Session) SetIdentity(id models.Identity) {
	s.s.Values[keyIdentity] = id
}

// Cart возвращает копию корзины; изменения нужно вернуть через SetCart
func (s *Session) Cart() models.Cart {
	cart, _ := s.s.Values[keyCart].(models.Cart)
	return cart
}

func (s *Session) SetCart(cart models.Cart) {
	if cart.IsEmpty() {
		delete(s.s.Values, keyCart)
		return
	}
	s.s.Values[keyCart] = cart
}

func (s *Session) AddFlash(typ, message string) {
	s.s.AddFlash(Flash{Type: typ, Message: message})
}

// Flashes забирает накопленные сообщения; без Save они покажутся еще раз
func (s *Session) Flashes() []Flash {
	var out []Flash
	for _, f := range s.s.Flashes() {
		if fm, ok := f.(Flash); ok {
			out = append(out, fm)
		}
	}
	return out
}

func (s *Session) Save(w http.ResponseWriter) error {
	return s.s.Save(s.r, w)
}

// Destroy удаляет все данные сессии вместе с корзиной и просит браузер удалить cookie
func (s *Session) Destroy(w http.ResponseWriter) error {
	for k := range s.s.Values {
		delete(s.s.Values, k)
	}
	s.s.Options.MaxAge = -1
	return s.s.Save(s.r, w)
}
