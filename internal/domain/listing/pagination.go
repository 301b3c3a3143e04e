// internal/domain/listing/pagination.go
package listing

// EffectivePages is pages when positive, otherwise ceil(total/limit), and
// never less than 1.
func EffectivePages(pages, total, limit int) int {
	if pages > 0 {
		return pages
	}
	if limit > 0 && total > 0 {
		pages = (total + limit - 1) / limit
	}
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage keeps page within [1, max]
func ClampPage(page, max int) int {
	if page > max {
		page = max
	}
	if page < 1 {
		page = 1
	}
	return page
}
