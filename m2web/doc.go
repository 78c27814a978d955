// Package m2web is a typed client for the Talk2M M2Web REST API.
//
// It covers account and session authentication, device listing and device
// lookup. Every operation issues exactly one HTTP GET and maps the API's
// JSON envelope and status codes onto a structured error taxonomy.
//
// # Usage
//
//	client := m2web.New(m2web.Config{
//	    Account:     "mycorp",
//	    Username:    "operator",
//	    Password:    "secret",
//	    DeveloperID: "731e38ec-981f-4f31-9cb5-e87f0d571816",
//	}, nil)
//
//	devices, err := client.Devices(ctx, "")
//	if err != nil {
//	    var apiErr *m2web.Error
//	    if errors.As(err, &apiErr) && apiErr.Kind == m2web.KindNoContent {
//	        // account has no devices
//	    }
//	}
//
// # Authentication modes
//
// Stateless (the default): every request carries the four credential
// parameters. Stateful (Config.StatefulAuth): Login exchanges the
// credentials for a session token reused by subsequent calls, and Logout
// invalidates it. A successful Logout consumes the client; further calls
// fail with KindClientConsumed.
//
// # Error Handling
//
// Every failure is returned as a *Error carrying an HTTP-like status code,
// a Kind and a display-ready message. There is no silent recovery and no
// retrying; the caller owns retry and timeout policy.
//
// # Thread Safety
//
// Session state is mutex-guarded, so a single client may be shared across
// goroutines.
package m2web
