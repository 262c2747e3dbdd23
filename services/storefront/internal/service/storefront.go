package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shestoi/storefront/platform/observability"
	"github.com/shestoi/storefront/services/storefront/internal/domain"
	"github.com/shestoi/storefront/services/storefront/internal/reconciler"
)

// ErrUnknownCategory - ключ категории не входит в список витрины
var ErrUnknownCategory = errors.New("unknown category")

// StorefrontService держит состояние просмотра каталога для каждой сессии и является
// единственной точкой, через которую операции над корзиной попадают в reconciler.
//
// Операции одной сессии выполняются последовательно (мьютекс pageView), разные сессии
// не блокируют друг друга.
type StorefrontService struct {
	catalog    CatalogClient
	carts      CartStore
	categories []domain.Category
	metrics    Recorder
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*pageView
}

// pageView - то, что в браузере жило бы в состоянии страницы каталога
type pageView struct {
	mu        sync.Mutex
	selection domain.Selection
	products  []domain.Product
	loaded    bool
	fetchErr  *domain.FetchError
	// lastSeen защищён StorefrontService.mu, остальные поля - mu
	lastSeen time.Time
}

// NewStorefrontService создаёт сервис витрины; пустой список категорий заменяется на DefaultCategories
func NewStorefrontService(
	catalog CatalogClient,
	carts CartStore,
	categories []domain.Category,
	metrics Recorder,
	logger *zap.Logger,
) *StorefrontService {
	if len(categories) == 0 {
		categories = domain.DefaultCategories()
	}
	return &StorefrontService{
		catalog:    catalog,
		carts:      carts,
		categories: categories,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*pageView),
	}
}

// ViewOutput - состояние страницы каталога
type ViewOutput struct {
	Categories []domain.Category
	Selection  domain.Selection
	Products   []domain.Product
	Cart       domain.Cart
	Total      float64
	Units      int
	// Error - сообщение FetchError; при нём список товаров пуст
	Error string
}

// DispatchOutput - состояние страницы после операции над корзиной
type DispatchOutput struct {
	View    ViewOutput
	Applied bool
	// Reason - причина отказа, если операция не применилась
	Reason string
}

// View возвращает страницу каталога; первая загрузка сессии выбирает товары из каталога
func (s *StorefrontService) View(ctx context.Context, sessionID string) ViewOutput {
	pv := s.session(sessionID)
	pv.mu.Lock()
	defer pv.mu.Unlock()

	s.ensureLoaded(ctx, pv)
	return s.output(pv, s.carts.Load(ctx, sessionID))
}

// ToggleCategory отмечает или снимает категорию и перевыбирает товары
func (s *StorefrontService) ToggleCategory(ctx context.Context, sessionID, key string, checked bool) (ViewOutput, error) {
	if !s.knownCategory(key) {
		return ViewOutput{}, ErrUnknownCategory
	}

	pv := s.session(sessionID)
	pv.mu.Lock()
	defer pv.mu.Unlock()

	pv.selection = pv.selection.Toggle(key, checked)
	s.fetch(ctx, pv)

	return s.output(pv, s.carts.Load(ctx, sessionID)), nil
}

// Dispatch применяет операцию к текущим товарам и сохранённой корзине.
// Корзина сохраняется после каждой применённой операции; отказ не меняет состояние.
func (s *StorefrontService) Dispatch(ctx context.Context, sessionID string, op reconciler.Operation) DispatchOutput {
	pv := s.session(sessionID)
	pv.mu.Lock()
	defer pv.mu.Unlock()

	s.ensureLoaded(ctx, pv)

	cart := s.carts.Load(ctx, sessionID)
	next, res := reconciler.Apply(reconciler.State{Products: pv.products, Cart: cart}, op)

	if !res.Applied {
		observability.L(ctx, s.logger).Warn("Cart operation rejected",
			zap.String("session_id", sessionID),
			zap.String("op", string(op.Kind)),
			zap.Int64("product_id", op.ProductID),
			zap.Error(res.Err),
		)
		s.metrics.CartOperation(string(op.Kind), rejectionLabel(res.Err))
		return DispatchOutput{View: s.output(pv, cart), Reason: res.Err.Error()}
	}

	pv.products = next.Products
	s.carts.Save(ctx, sessionID, next.Cart)
	s.metrics.CartOperation(string(op.Kind), "applied")

	return DispatchOutput{View: s.output(pv, next.Cart), Applied: true}
}

// Reload сбрасывает состояние страницы, как перезагрузка в браузере:
// выбор категорий возвращается к "All", остатки заново берутся из каталога.
func (s *StorefrontService) Reload(ctx context.Context, sessionID string) ViewOutput {
	pv := s.session(sessionID)
	pv.mu.Lock()
	defer pv.mu.Unlock()

	pv.selection = domain.NewSelection()
	pv.loaded = false
	s.ensureLoaded(ctx, pv)

	return s.output(pv, s.carts.Load(ctx, sessionID))
}

// Cart возвращает сохранённую корзину сессии
func (s *StorefrontService) Cart(ctx context.Context, sessionID string) domain.Cart {
	return s.carts.Load(ctx, sessionID)
}

// Categories возвращает список категорий витрины
func (s *StorefrontService) Categories() []domain.Category {
	out := make([]domain.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// EvictIdle удаляет состояние страниц, к которым не обращались дольше ttl.
// Корзины не трогает: они лежат в хранилище. Возвращает число удалённых сессий.
func (s *StorefrontService) EvictIdle(ttl time.Duration) int {
	deadline := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, pv := range s.sessions {
		if pv.lastSeen.Before(deadline) {
			delete(s.sessions, id)
			evicted++
		}
	}
	s.metrics.SessionsActive(len(s.sessions))
	return evicted
}

// RunJanitor периодически вызывает EvictIdle до отмены ctx
func (s *StorefrontService) RunJanitor(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.EvictIdle(ttl); n > 0 {
				s.logger.Debug("Evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

func (s *StorefrontService) session(sessionID string) *pageView {
	s.mu.Lock()
	defer s.mu.Unlock()

	pv, ok := s.sessions[sessionID]
	if !ok {
		pv = &pageView{selection: domain.NewSelection()}
		s.sessions[sessionID] = pv
		s.metrics.SessionsActive(len(s.sessions))
	}
	pv.lastSeen = s.now()
	return pv
}

// ensureLoaded выбирает товары при первом обращении сессии.
// После FetchError каждое следующее обращение повторяет выборку: ошибка не кэшируется.
func (s *StorefrontService) ensureLoaded(ctx context.Context, pv *pageView) {
	if !pv.loaded || pv.fetchErr != nil {
		s.fetch(ctx, pv)
	}
}

// fetch заменяет список товаров свежей выборкой: локально списанные остатки теряются
func (s *StorefrontService) fetch(ctx context.Context, pv *pageView) {
	start := s.now()
	products, err := s.catalog.Fetch(ctx, pv.selection)

	if err != nil {
		var fetchErr *domain.FetchError
		if !errors.As(err, &fetchErr) {
			fetchErr = &domain.FetchError{Message: "Catalog is unavailable.", Err: err}
		}
		pv.products = nil
		pv.fetchErr = fetchErr
		s.metrics.CatalogFetch("error", s.now().Sub(start))
		return
	}

	pv.products = products
	pv.fetchErr = nil
	pv.loaded = true
	s.metrics.CatalogFetch("ok", s.now().Sub(start))
}

func (s *StorefrontService) output(pv *pageView, cart domain.Cart) ViewOutput {
	out := ViewOutput{
		Categories: s.Categories(),
		Selection:  append(domain.Selection(nil), pv.selection...),
		Products:   domain.CloneProducts(pv.products),
		Cart:       cart,
		Total:      cart.Total(),
		Units:      cart.Units(),
	}
	if out.Products == nil {
		out.Products = []domain.Product{}
	}
	if pv.fetchErr != nil {
		out.Error = pv.fetchErr.Message
	}
	return out
}

func (s *StorefrontService) knownCategory(key string) bool {
	for _, c := range s.categories {
		if c.Key == key {
			return true
		}
	}
	return false
}

func rejectionLabel(err error) string {
	switch {
	case errors.Is(err, reconciler.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, reconciler.ErrLineNotFound):
		return "line_not_found"
	case errors.Is(err, reconciler.ErrProductNotFound):
		return "product_not_found"
	default:
		return "unknown"
	}
}
