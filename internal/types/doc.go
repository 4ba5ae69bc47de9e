/*
Package types defines the data structures shared across carcli.

# Overview

The types package provides the wire and view models for:
  - Cars, brands and their images
  - Create/update drafts
  - Paginated list queries and results
  - Filter criteria
  - Sessions and recorded API calls

# Cars

Car:
  - Server-owned record, the client holds a possibly stale copy
  - ID is nil until the server assigns one
  - ReleaseDateTime is a zone-less LocalDateTime

CarDraft:
  - Payload for create/update
  - Pointer fields are omitted when unset so updates can be partial
  - Brand must be resolved from BrandID before a create is submitted

# Listing

PageQuery:
  - Page index (0-based), page size
  - Sort key and direction
  - Server search term
  - FilterCriteria

FilterCriteria:
  - Brand name, specification substring, engine litres, new/used,
    price range, release date range
  - Encode only emits truthy fields; falsy values never reach the wire

PageResult:
  - Content for the requested page
  - TotalPages / TotalElements from the server
  - Replaces the displayed list wholesale

# Sorting

SortKey values mirror the API field names. SortBrand is special: it orders
by the brand name, not a scalar field on Car. An unset key is sent as "id".

# Example Usage

	query := types.PageQuery{
		Page:    0,
		Size:    5,
		SortBy:  types.SortPrice,
		SortDir: types.SortDesc,
		Filters: types.FilterCriteria{
			Brand:    "Toyota",
			MinPrice: types.Float(10000),
		},
	}
*/
package types
