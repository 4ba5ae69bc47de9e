/*
Package gateway is the HTTP abstraction over the car and brand API.

# Overview

The gateway translates list/create/update/delete intents into HTTP calls:
  - Paginated, sorted, searched and filtered car listing
  - Unpaginated car listing (price bounds only)
  - Car create/update as multipart submissions with an optional image
  - Brand CRUD with JSON bodies
  - Login (credentials for a bearer token)
  - Image URL resolution (pure string concatenation)

# Authentication

A Credentials implementation (session.Manager) supplies the bearer token.
When a token is present it is attached as "Authorization: Bearer <token>"
to every outgoing request. There is no expiry or refresh handling.

# Query Encoding

GET /car/byPage always carries pageNo, pageSize, sortBy, sortDir and
searchTerm. Filter predicates are appended only when truthy; see
types.FilterCriteria.Encode.

# Multipart Encoding

POST /car and PUT /car/{id} send:
  - a "car" part with Content-Type application/json
  - a "file" part with the image bytes, only when an Upload is given

# Errors

Any non-2xx response is returned as *StatusError. Transport failures are
wrapped with context. Nothing is retried and nothing is cached; callers
treat every failure the same way.

# Recording

Each completed call is reported to the optional Recorder (the history
store) and logged at debug level.

# Example Usage

	client := gateway.New(gateway.Options{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		Credentials: sessionMgr,
		Logger:      logger,
	})

	page, err := client.ListPage(ctx, types.PageQuery{
		Page:    0,
		Size:    5,
		SortBy:  types.SortID,
		SortDir: types.SortAsc,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%d cars on %d pages\n", page.TotalElements, page.TotalPages)

# Thread Safety

Client methods are safe to call concurrently; the underlying http.Client
is shared.
*/
package gateway
