/*
Package forumsdk provides a client SDK for the forum REST API.

# Overview

Every request goes through a Gateway. The gateway reads the stored
Session, attaches its access token as a bearer credential, and turns the
backend's error statuses into Go errors:

  - 401: the session is renewed once with the refresh token and the
    request re-sent. Concurrent 401s share one refresh call.
  - 429: a rate-limit Notice is raised and ErrRateLimited returned. Nothing
    is retried.
  - anything else >= 400: an *APIError with the backend's message.

When renewal is impossible (no refresh token) or fails, the stored
session is cleared, the Redirector is asked to send the user to login,
and callers receive ErrSessionExpired.

# Usage

	client := forumsdk.NewClient("http://localhost:8080",
		forumsdk.WithStore(store),
		forumsdk.WithRedirector(forumsdk.RedirectorFunc(func(ctx context.Context) {
			fmt.Fprintln(os.Stderr, "please log in again")
		})),
	)

	if _, err := client.Login(ctx, "alice", "secret"); err != nil {
		return err
	}

	posts, err := client.ListPosts(ctx, forumsdk.ListPostsQuery{Page: 1, Size: 20})

# Errors

	switch {
	case errors.Is(err, forumsdk.ErrSessionExpired):
		// log in again
	case errors.Is(err, forumsdk.ErrRateLimited):
		// back off
	case errors.Is(err, forumsdk.ErrUnauthorized):
		// credentials rejected, or still 401 after renewal
	}

	var apiErr *forumsdk.APIError
	if errors.As(err, &apiErr) {
		fmt.Println(apiErr.StatusCode, apiErr.Message)
	}

# Persistence

Store is a small interface; MemoryStore keeps the session in process.
Durable stores live in internal/store.
*/
package forumsdk
