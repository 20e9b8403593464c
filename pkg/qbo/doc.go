// Package qbo provides types, interfaces, and helpers for working with the
// QuickBooks Online V3 accounting API.
//
// # Overview
//
// The qbo package defines the domain types (e.g., Invoice, Customer, Payment,
// Bill) and the interfaces for entity-oriented clients (e.g., EntityCRUD,
// SendableEntity, BatchClient). A concrete implementation of these clients is
// provided by the qboclient package, which wires configuration, transport,
// authentication, rate limiting, and endpoint discovery. Most consumers
// should import qboclient to construct a client and then interact with the
// entity client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/ledgerkit-io/qbo-client/pkg/qbo"
//	  "github.com/ledgerkit-io/qbo-client/pkg/qboclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := qboclient.New(ctx, &qbo.Config{
//	    CompanyID:    "9130356528panda",
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	    RefreshToken: "refresh-token",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  invoice, err := cli.Invoices().Get(ctx, "145")
//	  if err != nil { log.Fatal(err) }
//	  _ = invoice
//	}
//
// # Queries
//
// Use QueryBuilder to assemble query statements without hand-escaping
// values:
//
//	stmt := qbo.NewQuery("Invoice").
//	  Where("CustomerRef", "=", "42").
//	  OrderBy("MetaData.LastUpdatedTime DESC").
//	  MaxResults(50).
//	  Build()
//	invoices, err := cli.Invoices().Query(ctx, stmt)
//
// # Errors
//
// API errors are represented by APIError and the provider's Fault envelope.
// Helpers such as IsNotFound, IsAuthError, and IsThrottled make it easy to
// branch on common cases. Batch calls whose responses omit correlation IDs
// surface BatchPartialFailureError, which keeps the matched results
// alongside the operations whose fate is unknown.
//
// # Rate limiting
//
// Every call is admitted by a client-side fixed-window rate limiter before
// any bytes go out, with separate windows for regular calls and batch calls.
// Callers only notice the limiter as added latency near the window capacity.
//
// # Interceptors and caching
//
// The package includes generic building blocks such as request/response
// interceptors (for logging, headers, metrics) and a pluggable Cache
// abstraction with memory and NATS KV backends. The qboclient package
// composes these pieces for a sensible default client; applications with
// advanced needs can also use these primitives directly.
package qbo
