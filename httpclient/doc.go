// Package httpclient provides an HTTP client guarded by the resilience
// layers: every request runs through the manager's retry, circuit breaker,
// and timeout composition, and failures are classified so transient upstream
// errors retry while permanent rejections fail fast.
//
// # Basic Usage
//
//	client, err := httpclient.New(manager, httpclient.Config{
//	    Name:    "billing-api",
//	    BaseURL: "https://api.example.com",
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "/invoices/123",
//	})
//
// By default calls are guarded with the external API profile; set
// Config.Guard to tune the layers per upstream.
package httpclient
