// Package client provides a generic API client built on [net/http].
//
// A [Client] sends every request relative to a fixed base url, attaches
// the caller's credential verbatim as the Authorization header, and
// turns any non-2xx response into an error built by the caller's
// [ErrorFactory]. The failure message has the form
//
//	[{path}] ({statusCode}): {responseBody}
//
// # Building a Client
//
// Use [Build] with an error factory and functional options:
//
//	c, err := client.Build("https://api.example.com", "Bearer "+token,
//		func(msg string) *MyAPIError { return &MyAPIError{Msg: msg} },
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//	)
//	defer c.Close()
//
// [NewAPIError] can serve as the factory when no domain error exists.
//
// # Making Requests
//
// Raw text helpers live on the Client; typed JSON helpers are generic
// functions taking the Client:
//
//	text, err := c.GetAsString(ctx, "status")
//	user, err := client.Get[User](ctx, c, "users/5")
//	created, err := client.Post[User](ctx, c, "users", newUser)
//	err = c.PostFile(ctx, "upload", f, "a.txt")
//
// Every helper funnels into [Client.SendRaw], which takes exactly one
// [Body]: [Empty], [Text] or [File].
//
// # Downloading Files
//
// Stream a GET response directly to disk with optional checksum
// verification and progress reporting:
//
//	err = c.Download(ctx, "exports/today.csv", "/tmp/today.csv",
//		client.WithChecksum(sha256.New(), expectedHex),
//		client.WithProgress(),
//	)
//
// For lower-level control see the
// [github.com/adamwoolhether/apiclient/client/download] package.
package client
