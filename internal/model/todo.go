package model

// Todo is the domain model for a todo entry.
// ID is assigned once at creation and never changes.
type Todo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Stats counts done and pending entries.
func Stats(todos []Todo) (done, pending int) {
	for _, t := range todos {
		if t.Done {
			done++
		} else {
			pending++
		}
	}
	return
}

// Split partitions todos into pending and done, keeping their order.
func Split(todos []Todo) (pending, done []Todo) {
	for _, t := range todos {
		if t.Done {
			done = append(done, t)
		} else {
			pending = append(pending, t)
		}
	}
	return
}
