// internal/domain/catalog/normalize.go
package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Shape names the envelope a list response arrived in
type Shape string

const (
	// ShapeNested is {data:{totalProducts|totalOffers:[...], pagination:{...}}}
	ShapeNested Shape = "nested"
	// ShapeDataArray is {data:[...], pagination:{...}} or {data:[...], page, totalPages}
	ShapeDataArray Shape = "data_array"
	// ShapeLegacy is {products|offers:[...], pages, page, limit, total}
	ShapeLegacy Shape = "legacy"
	// ShapeEmpty is an empty body or {success:true} without items
	ShapeEmpty Shape = "empty"
	// ShapeUnknown is any other JSON object
	ShapeUnknown Shape = "unknown"
	// ShapeInvalid is anything that is not a JSON object
	ShapeInvalid Shape = "invalid"
)

type resource struct {
	nestedKey string
	legacyKey string
}

var (
	productResource = resource{nestedKey: "totalProducts", legacyKey: "products"}
	offerResource   = resource{nestedKey: "totalOffers", legacyKey: "offers"}
)

// NormalizeProducts turns any known /api/products envelope into a ListResult.
// page and limit are the requested values, used when the response omits them.
func NormalizeProducts(body []byte, page, limit int) (ListResult, Shape) {
	return normalize(productResource, body, page, limit)
}

// NormalizeOffers turns any known /api/offers envelope into a ListResult
func NormalizeOffers(body []byte, page, limit int) (ListResult, Shape) {
	return normalize(offerResource, body, page, limit)
}

// number decodes a JSON number or numeric string; anything else leaves it unset
type number struct {
	value int
	set   bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	*n = number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		data = []byte(s)
	}
	if f, err := strconv.ParseFloat(string(data), 64); err == nil {
		*n = number{value: int(f), set: true}
	}
	return nil
}

type pagination struct {
	TotalPages    number `json:"totalPages"`
	Pages         number `json:"pages"`
	CurrentPage   number `json:"currentPage"`
	Page          number `json:"page"`
	Limit         number `json:"limit"`
	PerPage       number `json:"perPage"`
	TotalProducts number `json:"totalProducts"`
	ProductsFound number `json:"productsFound"`
	TotalItems    number `json:"totalItems"`
	TotalDocs     number `json:"totalDocs"`
	Total         number `json:"total"`
}

type envelope struct {
	Success    *bool           `json:"success"`
	Data       json.RawMessage `json:"data"`
	Pagination pagination      `json:"pagination"`
	Page       number          `json:"page"`
	Pages      number          `json:"pages"`
	TotalPages number          `json:"totalPages"`
	Limit      number          `json:"limit"`
	Total      number          `json:"total"`
	Count      number          `json:"count"`
}

type nestedData struct {
	Pagination pagination `json:"pagination"`
	TotalCount number     `json:"totalCount"`
}

func normalize(r resource, body []byte, page, limit int) (ListResult, Shape) {
	result := ListResult{
		Products: []Product{},
		Pages:    1,
		Page:     page,
		Limit:    limit,
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		// 304 without a payload
		result.Success = true
		return result, ShapeEmpty
	}
	if body[0] != '{' || !json.Valid(body) {
		return result, ShapeInvalid
	}

	// Type mismatches in individual fields are tolerated.
	var env envelope
	_ = json.Unmarshal(body, &env)
	var fields map[string]json.RawMessage
	_ = json.Unmarshal(body, &fields)

	data := bytes.TrimSpace(env.Data)

	if isObject(data) {
		var inner map[string]json.RawMessage
		_ = json.Unmarshal(data, &inner)
		if items, ok := inner[r.nestedKey]; ok {
			var nested nestedData
			_ = json.Unmarshal(data, &nested)
			p := nested.Pagination

			result.Products = decodeProducts(items)
			result.Page = positive(page, p.CurrentPage, p.Page, env.Page)
			result.Limit = positive(limit, p.Limit, p.PerPage, env.Limit)
			result.Total = present(len(result.Products), p.TotalProducts, p.TotalItems, p.TotalDocs, p.Total, nested.TotalCount, env.Total)
			result.Pages = derivePages(positive(0, p.TotalPages, env.TotalPages), result.Total, result.Limit)
			result.Success = true
			return result, ShapeNested
		}
	}

	if isArray(data) {
		p := env.Pagination

		result.Products = decodeProducts(data)
		result.Page = positive(page, p.CurrentPage, p.Page, env.Page)
		result.Limit = positive(limit, p.Limit, p.PerPage, env.Limit)
		result.Total = present(len(result.Products), p.TotalProducts, p.ProductsFound, p.TotalItems, p.TotalDocs, p.Total, env.Total, env.Count)
		result.Pages = derivePages(positive(0, p.TotalPages, p.Pages, env.TotalPages, env.Pages), result.Total, result.Limit)
		result.Success = true
		return result, ShapeDataArray
	}

	if items := bytes.TrimSpace(fields[r.legacyKey]); isArray(items) {
		result.Products = decodeProducts(items)
		result.Page = positive(page, env.Page)
		result.Limit = positive(limit, env.Limit)
		result.Total = positive(len(result.Products), env.Total, env.Count)
		result.Pages = derivePages(positive(0, env.Pages, env.TotalPages), result.Total, result.Limit)
		result.Success = true
		return result, ShapeLegacy
	}

	result.Success = true
	if env.Success != nil && *env.Success {
		return result, ShapeEmpty
	}
	return result, ShapeUnknown
}

// decodeProducts decodes an array element by element, skipping records that
// do not fit the Product shape.
func decodeProducts(raw json.RawMessage) []Product {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return []Product{}
	}

	products := make([]Product, 0, len(elems))
	for _, elem := range elems {
		var p Product
		if err := json.Unmarshal(elem, &p); err != nil {
			continue
		}
		products = append(products, p)
	}
	return products
}

// positive returns the first candidate greater than zero, else fallback
func positive(fallback int, candidates ...number) int {
	for _, c := range candidates {
		if c.set && c.value > 0 {
			return c.value
		}
	}
	return fallback
}

// present returns the first candidate that was sent, else fallback
func present(fallback int, candidates ...number) int {
	for _, c := range candidates {
		if c.set {
			return c.value
		}
	}
	return fallback
}

// derivePages uses the reported page count when positive, otherwise
// ceil(total/limit), never less than 1.
func derivePages(pages, total, limit int) int {
	if pages > 0 {
		return pages
	}
	if limit > 0 && total > 0 {
		pages = (total + limit - 1) / limit
	}
	if pages < 1 {
		pages = 1
	}
	return pages
}

func isObject(raw []byte) bool {
	return len(raw) > 0 && raw[0] == '{'
}

func isArray(raw []byte) bool {
	return len(raw) > 0 && raw[0] == '['
}
