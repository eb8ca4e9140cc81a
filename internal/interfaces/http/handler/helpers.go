package handler

// pageOrFirst reports the page a list response belongs to when the client
// did not ask for one
func pageOrFirst(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
