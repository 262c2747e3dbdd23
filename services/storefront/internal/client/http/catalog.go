package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/shestoi/storefront/platform/observability"
	"github.com/shestoi/storefront/services/storefront/internal/domain"
)

// DefaultCatalogErrorMessage - сообщение покупателю, когда каталог недоступен
const DefaultCatalogErrorMessage = "To ensure the website loads data correctly, please note that the server might take a few minutes to start, " +
	"as it is on a free plan. This may require you to refresh the page a few times until " +
	"the server is running and the data can be fetched properly. Thank you for your patience."

// maxCatalogBody ограничивает размер ответа каталога
const maxCatalogBody = 10 << 20

// CatalogConfig - настройки клиента каталога
type CatalogConfig struct {
	URL          string
	ErrorMessage string
	// MaxRetries - число повторов после первой попытки; 0 - без повторов
	MaxRetries      int
	RetryInterval   time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// CatalogClient получает список товаров из REST каталога.
// Одинаковые одновременные запросы схлопываются, а при серии отказов circuit breaker
// отвечает ошибкой сразу, не нагружая каталог.
type CatalogClient struct {
	cfg        CatalogConfig
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]domain.Product]
	group      singleflight.Group
	logger     *zap.Logger
}

// NewCatalogClient создаёт клиент каталога
func NewCatalogClient(cfg CatalogConfig, httpClient *http.Client, logger *zap.Logger) *CatalogClient {
	if cfg.ErrorMessage == "" {
		cfg.ErrorMessage = DefaultCatalogErrorMessage
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 200 * time.Millisecond
	}

	breaker := gobreaker.NewCircuitBreaker[[]domain.Product](gobreaker.Settings{
		Name:    "catalog",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: catalogAvailable,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &CatalogClient{
		cfg:        cfg,
		httpClient: httpClient,
		breaker:    breaker,
		logger:     logger,
	}
}

// Fetch возвращает товары для выбора категорий. Ровно {"All"} или пустой выбор - без фильтра,
// иначе ?categories=a,b в порядке выбора. Любая ошибка возвращается как *domain.FetchError.
func (c *CatalogClient) Fetch(ctx context.Context, selection domain.Selection) ([]domain.Product, error) {
	target, err := c.requestURL(selection)
	if err != nil {
		return nil, &domain.FetchError{Message: c.cfg.ErrorMessage, Err: err}
	}

	ch := c.group.DoChan(target, func() (any, error) {
		// общий запрос переживает отмену любого из ожидающих; время ограничено таймаутом http клиента
		fetchCtx := context.WithoutCancel(ctx)
		return c.breaker.Execute(func() ([]domain.Product, error) {
			return c.fetchWithRetry(fetchCtx, target)
		})
	})

	select {
	case <-ctx.Done():
		return nil, &domain.FetchError{Message: c.cfg.ErrorMessage, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			observability.L(ctx, c.logger).Warn("Catalog fetch failed",
				zap.String("url", target),
				zap.Bool("shared", res.Shared),
				zap.Error(res.Err),
			)
			return nil, &domain.FetchError{Message: c.cfg.ErrorMessage, Err: res.Err}
		}
		// результат singleflight общий для всех ожидающих: отдаём каждому свою копию
		return domain.CloneProducts(res.Val.([]domain.Product)), nil
	}
}

// catalogAvailable решает, считать ли ошибку отказом каталога для circuit breaker.
// Отмена запроса и ответы 4xx каталог не характеризуют.
func catalogAvailable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *statusError
	return errors.As(err, &se) && se.code < http.StatusInternalServerError
}

// statusError - неуспешный HTTP статус ответа каталога
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("catalog responded with status %d", e.code)
}

func (c *CatalogClient) requestURL(selection domain.Selection) (string, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parse catalog url: %w", err)
	}
	if !selection.IsAll() {
		q := u.Query()
		q.Set("categories", strings.Join(selection, ","))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *CatalogClient) fetchWithRetry(ctx context.Context, target string) ([]domain.Product, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryInterval

	return backoff.Retry(ctx, func() ([]domain.Product, error) {
		return c.fetchOnce(ctx, target)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.cfg.MaxRetries)+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			observability.L(ctx, c.logger).Info("Retrying catalog fetch",
				zap.Error(err),
				zap.Duration("backoff", next),
			)
		}),
	)
}

func (c *CatalogClient) fetchOnce(ctx context.Context, target string) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build catalog request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := &statusError{code: resp.StatusCode}
		if resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	var products []domain.Product
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCatalogBody)).Decode(&products); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode catalog response: %w", err))
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}
