package usecase

// paginate returns the window [(page-1)*perPage, page*perPage) of the
// already-sorted result set. A page past the end yields an empty slice,
// never an error. The input order is preserved. The past-the-end check
// runs before the offset multiplication so arbitrarily large page numbers
// cannot overflow into a bad slice index.
func paginate(results []scoredCase, page, perPage int) []scoredCase {
	if page < 1 || perPage < 1 || page > totalPages(len(results), perPage) {
		return nil
	}
	offset := (page - 1) * perPage
	end := offset + perPage
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}

func totalPages(total, perPage int) int {
	if total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
