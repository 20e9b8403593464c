// Package qboclient constructs ready-to-use QuickBooks Online clients.
//
// It is the assembly layer over pkg/qbo: it validates configuration, resolves
// the environment's OAuth discovery document, builds the token manager and
// transport, and returns a qbo.Client with both rate limiter windows armed.
//
// Basic usage:
//
//	client, err := qboclient.New(ctx, &qbo.Config{
//		CompanyID:    "9341452148123456",
//		Environment:  qbo.Production,
//		ClientID:     os.Getenv("QBO_CLIENT_ID"),
//		ClientSecret: os.Getenv("QBO_CLIENT_SECRET"),
//		RefreshToken: os.Getenv("QBO_REFRESH_TOKEN"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	invoice, err := client.Invoices().Get(ctx, "145")
//
// For short-lived tooling that already holds a bearer token, NewWithToken
// skips the refresh machinery entirely.
package qboclient
