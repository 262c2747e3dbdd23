// Package cartstore сохраняет корзину сессии в один durable слот.
//
// Формат слота - версионированный JSON конверт {"version":1,"lines":[...]}.
// Голый массив позиций (старый формат) читается как версия 0 и при следующем Save
// переписывается в текущую версию. Любая другая версия отбрасывается.
package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shestoi/storefront/services/storefront/internal/domain"
	"github.com/shestoi/storefront/services/storefront/internal/repository"
)

// CurrentVersion - версия конверта, которую пишет Save
const CurrentVersion = 1

// DefaultSlotName - имя слота по умолчанию
const DefaultSlotName = "cart"

// ErrUnsupportedVersion - конверт неизвестной версии
var ErrUnsupportedVersion = errors.New("unsupported cart envelope version")

type envelope struct {
	Version int         `json:"version"`
	Lines   domain.Cart `json:"lines"`
}

// Encode сериализует корзину в текущую версию конверта
func Encode(cart domain.Cart) ([]byte, error) {
	if cart == nil {
		cart = domain.Cart{}
	}
	return json.Marshal(envelope{Version: CurrentVersion, Lines: cart})
}

// Decode разбирает слот. Возвращает версию, из которой прочитаны данные (0 для голого массива).
// Позиции с qty < 1 отбрасываются, повторы id схлопываются в первую позицию.
func Decode(data []byte) (domain.Cart, int, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, err
	}

	switch firstByte(raw) {
	case '[':
		var lines domain.Cart
		if err := json.Unmarshal(raw, &lines); err != nil {
			return nil, 0, err
		}
		return sanitize(lines), 0, nil
	case '{':
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, 0, err
		}
		if env.Version != CurrentVersion {
			return nil, env.Version, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
		}
		return sanitize(env.Lines), env.Version, nil
	default:
		return nil, 0, fmt.Errorf("cart slot is neither an array nor an object")
	}
}

func firstByte(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return c
	}
	return 0
}

func sanitize(lines domain.Cart) domain.Cart {
	out := make(domain.Cart, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 || out.Find(line.ID) >= 0 {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Store - корзины сессий поверх SlotRepository. Ключ слота: "<slot>:<session id>".
type Store struct {
	repo     repository.SlotRepository
	slotName string
	logger   *zap.Logger
}

// New создаёт Store; пустой slotName заменяется на DefaultSlotName
func New(repo repository.SlotRepository, slotName string, logger *zap.Logger) *Store {
	if slotName == "" {
		slotName = DefaultSlotName
	}
	return &Store{
		repo:     repo,
		slotName: slotName,
		logger:   logger,
	}
}

// Key возвращает ключ слота для сессии
func (s *Store) Key(sessionID string) string {
	return s.slotName + ":" + sessionID
}

// Load читает корзину сессии. Никогда не возвращает ошибку: отсутствующий,
// повреждённый или недоступный слот даёт пустую корзину.
func (s *Store) Load(ctx context.Context, sessionID string) domain.Cart {
	key := s.Key(sessionID)

	data, err := s.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("failed to read cart slot, starting with empty cart",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return domain.Cart{}
	}

	cart, version, err := Decode(data)
	if err != nil {
		s.logger.Warn("discarding unreadable cart slot",
			zap.String("key", key),
			zap.Int("version", version),
			zap.Error(err),
		)
		return domain.Cart{}
	}
	if version != CurrentVersion {
		s.logger.Debug("cart slot read from legacy format",
			zap.String("key", key),
			zap.Int("version", version),
		)
	}

	return cart
}

// Save перезаписывает слот корзиной целиком. Ошибка записи логируется и не пробрасывается:
// in-memory состояние сессии остаётся источником истины до следующей успешной записи.
func (s *Store) Save(ctx context.Context, sessionID string, cart domain.Cart) {
	key := s.Key(sessionID)

	data, err := Encode(cart)
	if err != nil {
		s.logger.Warn("failed to encode cart", zap.String("key", key), zap.Error(err))
		return
	}

	if err := s.repo.Set(ctx, key, data); err != nil {
		s.logger.Warn("failed to persist cart slot",
			zap.String("key", key),
			zap.Int("lines", len(cart)),
			zap.Error(err),
		)
	}
}

// Clear удаляет слот сессии
func (s *Store) Clear(ctx context.Context, sessionID string) {
	key := s.Key(sessionID)
	if err := s.repo.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to clear cart slot", zap.String("key", key), zap.Error(err))
	}
}

// Ping проверяет доступность хранилища слотов
func (s *Store) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
