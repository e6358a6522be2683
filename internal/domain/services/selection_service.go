package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/motoekip/catalog-service/internal/adapters/messaging"
	"github.com/motoekip/catalog-service/internal/domain/models"
	pkgerrors "github.com/motoekip/catalog-service/pkg/errors"
	"github.com/motoekip/catalog-service/pkg/interfaces"
)

// SelectionService предоставляет бизнес-логику пользовательских списков:
// корзины и избранного. Списки хранятся целиком под одним ключом
type SelectionService struct {
	store     interfaces.SelectionStorePort
	catalog   *CatalogService
	messaging interfaces.MessagingPort
	logger    interfaces.LoggerPort
}

// NewSelectionService создает новый экземпляр SelectionService
func NewSelectionService(
	store interfaces.SelectionStorePort,
	catalogService *CatalogService,
	msgBroker interfaces.MessagingPort,
	logger interfaces.LoggerPort,
) *SelectionService {
	return &SelectionService{
		store:     store,
		catalog:   catalogService,
		messaging: msgBroker,
		logger:    logger,
	}
}

func cartKey(userID string) string      { return "cart:" + userID }
func favoritesKey(userID string) string { return "favorites:" + userID }

// Cart возвращает корзину пользователя. Отсутствие ключа означает
// пустую корзину, а не ошибку
func (s *SelectionService) Cart(ctx context.Context, userID string) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	if err := s.loadList(ctx, cartKey(userID), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart добавляет товар в корзину. Если товар уже в корзине,
// количество увеличивается. quantity меньше единицы трактуется как единица
func (s *SelectionService) AddToCart(ctx context.Context, userID, productID string, quantity int) ([]models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	// Товар должен существовать в каталоге
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	items, err := s.Cart(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, models.CartItem{
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   time.Now().UTC(),
		})
	}

	if err := s.saveList(ctx, cartKey(userID), items); err != nil {
		return nil, err
	}

	s.publishCartItemAdded(ctx, userID, productID, quantity)

	return items, nil
}

// UpdateCartItem устанавливает количество товара в корзине.
// Количество меньше либо равное нулю удаляет товар
func (s *SelectionService) UpdateCartItem(ctx context.Context, userID, productID string, quantity int) ([]models.CartItem, error) {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, userID, productID)
	}

	items, err := s.Cart(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			if err := s.saveList(ctx, cartKey(userID), items); err != nil {
				return nil, err
			}
			return items, nil
		}
	}

	return nil, ErrProductNotFound
}

// RemoveFromCart удаляет товар из корзины. Удаление отсутствующего
// товара не является ошибкой
func (s *SelectionService) RemoveFromCart(ctx context.Context, userID, productID string) ([]models.CartItem, error) {
	items, err := s.Cart(ctx, userID)
	if err != nil {
		return nil, err
	}

	filtered := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			filtered = append(filtered, item)
		}
	}

	if err := s.saveList(ctx, cartKey(userID), filtered); err != nil {
		return nil, err
	}
	return filtered, nil
}

// ClearCart очищает корзину пользователя
func (s *SelectionService) ClearCart(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, cartKey(userID)); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Favorites возвращает список избранного пользователя
func (s *SelectionService) Favorites(ctx context.Context, userID string) ([]models.FavoriteItem, error) {
	items := make([]models.FavoriteItem, 0)
	if err := s.loadList(ctx, favoritesKey(userID), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ToggleFavorite добавляет товар в избранное или удаляет из него.
// Возвращает обновленный список и признак того, что товар был добавлен
func (s *SelectionService) ToggleFavorite(ctx context.Context, userID, productID string) ([]models.FavoriteItem, bool, error) {
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, false, err
	}

	items, err := s.Favorites(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	added := true
	filtered := items[:0]
	for _, item := range items {
		if item.ProductID == productID {
			added = false
			continue
		}
		filtered = append(filtered, item)
	}
	if added {
		filtered = append(filtered, models.FavoriteItem{
			ProductID: productID,
			AddedAt:   time.Now().UTC(),
		})
	}

	if err := s.saveList(ctx, favoritesKey(userID), filtered); err != nil {
		return nil, false, err
	}

	s.publishFavoriteToggled(ctx, userID, productID, added)

	return filtered, added, nil
}

// loadList читает сериализованный список из хранилища
func (s *SelectionService) loadList(ctx context.Context, key string, dest interface{}) error {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load selection %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// Поврежденный список восстановлению не подлежит, начинаем с пустого
		s.logger.WarnWithContext(ctx, "Failed to unmarshal selection, resetting", "key", key, "error", err)
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to reset selection %s: %w", key, err)
		}
	}

	return nil
}

// saveList сохраняет сериализованный список в хранилище
func (s *SelectionService) saveList(ctx context.Context, key string, items interface{}) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal selection %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save selection %s: %w", key, err)
	}
	return nil
}

func (s *SelectionService) publishCartItemAdded(ctx context.Context, userID, productID string, quantity int) {
	payload := messaging.CartItemAddedPayload{
		Event:     messaging.CartItemAddedEvent,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now().UTC(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.ErrorWithContext(ctx, "Failed to marshal cart_item_added event", "error", err)
		return
	}
	if err := s.messaging.PublishWithKey(ctx, messaging.CartItemAddedEvent, userID, data); err != nil {
		s.logger.WarnWithContext(ctx, "Failed to publish cart_item_added event", "user_id", userID, "error", err)
	}
}

func (s *SelectionService) publishFavoriteToggled(ctx context.Context, userID, productID string, added bool) {
	payload := messaging.FavoriteToggledPayload{
		Event:     messaging.FavoriteToggledEvent,
		UserID:    userID,
		ProductID: productID,
		Added:     added,
		ToggledAt: time.Now().UTC(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.ErrorWithContext(ctx, "Failed to marshal favorite_toggled event", "error", err)
		return
	}
	if err := s.messaging.PublishWithKey(ctx, messaging.FavoriteToggledEvent, userID, data); err != nil {
		s.logger.WarnWithContext(ctx, "Failed to publish favorite_toggled event", "user_id", userID, "error", err)
	}
}
