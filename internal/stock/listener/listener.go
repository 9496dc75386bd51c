package listener

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/avelia/catalog-service/internal/product"
	"github.com/avelia/catalog-service/internal/product/dto"
	"github.com/avelia/catalog-service/pkg/broker"
	"github.com/avelia/catalog-service/pkg/logger"
)

// StockListener consumes order-created events and turns each purchased line
// into an absolute stock write through the product use case.
type StockListener struct {
	consumer    *broker.KafkaConsumer
	uc          product.UseCase
	productRepo product.Repository
	logger      logger.ZapLogger
}

func NewStockListener(consumer *broker.KafkaConsumer, uc product.UseCase, repo product.Repository, log logger.ZapLogger) *StockListener {
	return &StockListener{
		consumer:    consumer,
		uc:          uc,
		productRepo: repo,
		logger:      log,
	}
}

func (l *StockListener) Start(ctx context.Context) {
	l.logger.Info("starting stock kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping stock kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type OrderCreatedEvent struct {
	OrderID string                  `json:"order_id"`
	Items   []OrderCreatedEventItem `json:"items"`
}

type OrderCreatedEventItem struct {
	ProductID string  `json:"product_id"`
	VariantID *string `json:"variant_id"`
	Quantity  int     `json:"quantity"`
}

func (l *StockListener) processMessage(ctx context.Context, value []byte) {
	var event OrderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal order event", zap.Error(err))
		return
	}
	if event.OrderID == "" || len(event.Items) == 0 {
		return
	}

	updates := make([]dto.StockUpdate, 0, len(event.Items))
	for _, item := range event.Items {
		update, err := l.decrement(ctx, &item)
		if err != nil {
			l.logger.Error("failed to compute stock for order item",
				zap.String("order_id", event.OrderID),
				zap.String("product_id", item.ProductID),
				zap.Error(err))
			continue
		}
		if update != nil {
			updates = append(updates, *update)
		}
	}
	if len(updates) == 0 {
		return
	}

	if err := l.uc.UpdateStock(ctx, updates); err != nil {
		l.logger.Error("failed to apply stock updates",
			zap.String("order_id", event.OrderID), zap.Error(err))
		return
	}
	l.logger.Info("stock decremented for order",
		zap.String("order_id", event.OrderID), zap.Int("items", len(updates)))
}

// decrement reads the current quantity and clamps the result at zero; the
// write path only accepts absolute values.
func (l *StockListener) decrement(ctx context.Context, item *OrderCreatedEventItem) (*dto.StockUpdate, error) {
	if item.VariantID != nil {
		variants, err := l.productRepo.FindVariants(ctx, item.ProductID, false)
		if err != nil {
			return nil, err
		}
		for i := range variants {
			if variants[i].ID != *item.VariantID {
				continue
			}
			stock := variants[i].Quantity - item.Quantity
			if stock < 0 {
				stock = 0
			}
			return &dto.StockUpdate{ProductID: item.ProductID, VariantID: item.VariantID, Stock: stock}, nil
		}
		return nil, nil
	}

	p, err := l.productRepo.Find(ctx, &dto.Lookup{ID: item.ProductID})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	stock := p.Quantity - item.Quantity
	if stock < 0 {
		stock = 0
	}
	return &dto.StockUpdate{ProductID: item.ProductID, Stock: stock}, nil
}
