package commands

import (
	"context"
	"fmt"

	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
	"gopkg.in/yaml.v3"
)

// entityOps adapts one typed entity client to the untyped surface the CLI
// dispatches on.
type entityOps struct {
	name   string
	query  func(ctx context.Context, client qbo.Client, statement string) (interface{}, error)
	get    func(ctx context.Context, client qbo.Client, id string) (interface{}, error)
	create func(ctx context.Context, client qbo.Client, payload []byte) (interface{}, error)
	remove func(ctx context.Context, client qbo.Client, id string) (interface{}, error)

	// decode parses a payload into the typed entity for batch operations.
	decode func(payload []byte) (qbo.Entity, error)
}

// sendableOps extends entityOps with delivery operations.
type sendableOps struct {
	send func(ctx context.Context, client qbo.Client, id, sendTo string) (interface{}, error)
	pdf  func(ctx context.Context, client qbo.Client, id string) ([]byte, error)
}

// crudOps wraps a typed entity client accessor. Payloads are YAML, which also
// accepts JSON.
func crudOps[T any](name string, accessor func(qbo.Client) qbo.EntityCRUD[T]) entityOps {
	return entityOps{
		name: name,
		query: func(ctx context.Context, client qbo.Client, statement string) (interface{}, error) {
			return accessor(client).Query(ctx, statement)
		},
		get: func(ctx context.Context, client qbo.Client, id string) (interface{}, error) {
			return accessor(client).Get(ctx, id)
		},
		create: func(ctx context.Context, client qbo.Client, payload []byte) (interface{}, error) {
			var entity T

			if err := yaml.Unmarshal(payload, &entity); err != nil {
				return nil, fmt.Errorf("failed to parse %s payload: %w", name, err)
			}

			return accessor(client).Create(ctx, &entity)
		},
		remove: func(ctx context.Context, client qbo.Client, id string) (interface{}, error) {
			crud := accessor(client)

			// Delete needs the current sync token, so read the entity first.
			entity, err := crud.Get(ctx, id)
			if err != nil {
				return nil, err
			}

			return crud.Delete(ctx, entity)
		},
		decode: func(payload []byte) (qbo.Entity, error) {
			entity := new(T)

			if err := yaml.Unmarshal(payload, entity); err != nil {
				return nil, fmt.Errorf("failed to parse %s payload: %w", name, err)
			}

			typed, ok := any(entity).(qbo.Entity)
			if !ok {
				return nil, fmt.Errorf("%w: '%s'", ErrUnknownEntity, name)
			}

			return typed, nil
		},
	}
}

func sendOps[T any](accessor func(qbo.Client) qbo.SendableEntity[T]) sendableOps {
	return sendableOps{
		send: func(ctx context.Context, client qbo.Client, id, sendTo string) (interface{}, error) {
			return accessor(client).SendEmail(ctx, id, sendTo)
		},
		pdf: func(ctx context.Context, client qbo.Client, id string) ([]byte, error) {
			return accessor(client).PDF(ctx, id)
		},
	}
}

// entityRegistry maps CLI entity names to their typed clients.
var entityRegistry = map[string]entityOps{
	"invoice":      crudOps("Invoice", func(c qbo.Client) qbo.EntityCRUD[qbo.Invoice] { return c.Invoices() }),
	"salesreceipt": crudOps("SalesReceipt", func(c qbo.Client) qbo.EntityCRUD[qbo.SalesReceipt] { return c.SalesReceipts() }),
	"estimate":     crudOps("Estimate", func(c qbo.Client) qbo.EntityCRUD[qbo.Estimate] { return c.Estimates() }),
	"payment":      crudOps("Payment", func(c qbo.Client) qbo.EntityCRUD[qbo.Payment] { return c.Payments() }),
	"bill":         crudOps("Bill", func(c qbo.Client) qbo.EntityCRUD[qbo.Bill] { return c.Bills() }),
	"vendor":       crudOps("Vendor", func(c qbo.Client) qbo.EntityCRUD[qbo.Vendor] { return c.Vendors() }),
	"customer":     crudOps("Customer", func(c qbo.Client) qbo.EntityCRUD[qbo.Customer] { return c.Customers() }),
	"employee":     crudOps("Employee", func(c qbo.Client) qbo.EntityCRUD[qbo.Employee] { return c.Employees() }),
	"item":         crudOps("Item", func(c qbo.Client) qbo.EntityCRUD[qbo.Item] { return c.Items() }),
	"account":      crudOps("Account", func(c qbo.Client) qbo.EntityCRUD[qbo.Account] { return c.Accounts() }),
	"attachable":   crudOps("Attachable", func(c qbo.Client) qbo.EntityCRUD[qbo.Attachable] { return c.Attachments() }),
}

// sendableRegistry maps entity names that support send and pdf.
var sendableRegistry = map[string]sendableOps{
	"invoice":      sendOps(func(c qbo.Client) qbo.SendableEntity[qbo.Invoice] { return c.Invoices() }),
	"salesreceipt": sendOps(func(c qbo.Client) qbo.SendableEntity[qbo.SalesReceipt] { return c.SalesReceipts() }),
	"estimate":     sendOps(func(c qbo.Client) qbo.SendableEntity[qbo.Estimate] { return c.Estimates() }),
}

func resolveEntity(name string) (entityOps, error) {
	ops, ok := entityRegistry[name]
	if !ok {
		return entityOps{}, fmt.Errorf("%w: '%s'", ErrUnknownEntity, name)
	}

	return ops, nil
}

func resolveSendable(name string) (sendableOps, error) {
	if _, err := resolveEntity(name); err != nil {
		return sendableOps{}, err
	}

	ops, ok := sendableRegistry[name]
	if !ok {
		return sendableOps{}, fmt.Errorf("%w: '%s'", ErrEntityNotSendable, name)
	}

	return ops, nil
}
