// Package models defines the core data structures for users and tasks.
package models

import "sort"

// User represents an application user as returned by the server.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Email is the address the user signs in with.
	Email string `json:"email"`
	// Username is the display name chosen by the user.
	Username string `json:"username"`
}

// UserRecord is a User together with its stored password hash.
// Only the server-side repositories deal with it; the hash never
// crosses the wire.
type UserRecord struct {
	User
	PasswordHash []byte `json:"-"`
}

// Priority defines the set of valid task priority values.
type Priority string

const (
	// PriorityLow marks a task that can wait.
	PriorityLow Priority = "low"
	// PriorityMedium is the default urgency.
	PriorityMedium Priority = "medium"
	// PriorityHigh marks a task that should be done first.
	PriorityHigh Priority = "high"
)

// Valid reports whether p is one of the defined priority values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a single to-do item. The server assigns the ID and it never
// changes afterwards; the client treats the server as the source of truth.
type Task struct {
	// ID is the server-assigned identifier.
	ID string `json:"id"`
	// Title is the short name of the task.
	Title string `json:"title"`
	// Description holds the longer free-form text.
	Description string `json:"description"`
	// DueDate is an ISO date string as it appears on the wire.
	DueDate string `json:"dueDate"`
	// Priority is one of low, medium, high.
	Priority Priority `json:"priority"`
	// Category is a free-form grouping label.
	Category string `json:"category"`
	// Completed reports whether the task is done.
	Completed bool `json:"completed"`
	// UserID identifies the owning user.
	UserID string `json:"userId"`
}

// AuthState is the authentication snapshot handed out by the session
// controller. Token and User are always set or cleared together.
type AuthState struct {
	Token string
	User  *User
}

// IsAuthenticated reports whether the state holds a full credential pair.
func (s AuthState) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// Category is a derived view: tasks grouped by their category label with
// a count. It is recomputed from the task list, never stored.
type Category struct {
	Name      string `json:"name"`
	TaskCount int    `json:"taskCount"`
}

// CategoriesFromTasks groups tasks by category and counts them.
// The result is sorted by name so repeated calls render identically.
func CategoriesFromTasks(tasks []Task) []Category {
	counts := make(map[string]int)
	for _, t := range tasks {
		counts[t.Category]++
	}
	categories := make([]Category, 0, len(counts))
	for name, n := range counts {
		categories = append(categories, Category{Name: name, TaskCount: n})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories
}
