// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package connect receives Connect webhook notifications.

Connect posts a JSON event to a listener URL whenever an envelope or
recipient changes status. With HMAC enabled each request carries one
X-DocuSign-Signature-N header per active key, holding the base64
HMAC-SHA256 of the raw body:

	ok := connect.Verify(secret, body, r.Header.Get("X-DocuSign-Signature-1"))

Handler verifies, parses and dispatches events and can be served with
transport.HTTPSServer:

	h := connect.NewHandler(func(ctx context.Context, ev *connect.Event) error {
	    log.Info("envelope changed", "id", ev.Data.EnvelopeID, "event", ev.Event)
	    return nil
	}, log, secret)
	srv := transport.NewHTTPSServer(":8443", "/connect", cfg, h)

Connect retries a notification until the listener answers 200. With a
Tracker attached, a body seen within the tracker's window is acknowledged
without reaching the callback again.
*/
package connect
