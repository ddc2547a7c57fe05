// Package main is the interactive task client: a small shell over the
// session controller and task cache.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ndubrovin/TaskKeeper/internal/client/api"
	"github.com/ndubrovin/TaskKeeper/internal/client/cache"
	"github.com/ndubrovin/TaskKeeper/internal/client/session"
	"github.com/ndubrovin/TaskKeeper/internal/client/storage"
	"github.com/ndubrovin/TaskKeeper/internal/logger"
	"github.com/ndubrovin/TaskKeeper/internal/models"
)

var (
	version   string
	buildDate string
)

// app bundles the client-side components the shell commands operate on.
type app struct {
	session *session.Controller
	tasks   *cache.TaskCache
	mirror  *storage.TaskMirror
	scanner *bufio.Scanner
}

// repl runs the interactive shell loop, accepting commands to manage
// the account and tasks.
func repl(a *app) {
	ctx := context.Background()

	for {
		fmt.Print("taskkeeper> ")
		if !a.scanner.Scan() {
			break
		}
		line := strings.TrimSpace(a.scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, register, login, logout, whoami, list, completed, categories, add, get <id>, edit <id>, done <id>, delete <id>, exit")
		case "register":
			a.register(ctx)
		case "login":
			a.login(ctx)
		case "logout":
			a.session.Logout()
			a.tasks.Invalidate()
			fmt.Println("Signed out")
		case "whoami":
			a.whoami()
		case "list":
			a.list(ctx, false)
		case "completed":
			a.list(ctx, true)
		case "categories":
			a.categories(ctx)
		case "add":
			a.add(ctx)
		case "get":
			if len(args) < 2 {
				fmt.Println("Usage: get <id>")
				continue
			}
			a.get(ctx, args[1])
		case "edit":
			if len(args) < 2 {
				fmt.Println("Usage: edit <id>")
				continue
			}
			a.edit(ctx, args[1])
		case "done":
			if len(args) < 2 {
				fmt.Println("Usage: done <id>")
				continue
			}
			a.done(ctx, args[1])
		case "delete":
			if len(args) < 2 {
				fmt.Println("Usage: delete <id>")
				continue
			}
			a.delete(ctx, args[1])
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func (a *app) authed() bool {
	if !a.session.AuthState().IsAuthenticated() {
		fmt.Println("Please login first")
		return false
	}
	return true
}

// prompt reads one line of input after printing the label.
func (a *app) prompt(label string) string {
	fmt.Print(label)
	a.scanner.Scan()
	return strings.TrimSpace(a.scanner.Text())
}

func (a *app) login(ctx context.Context) {
	email := a.prompt("Email: ")
	password := a.prompt("Password: ")
	if err := a.session.Login(ctx, email, password); err != nil {
		fmt.Println("Login failed:", err)
		if !a.session.AuthState().IsAuthenticated() {
			return
		}
		// Server accepted the login but the token could not be
		// persisted; the session will not survive a restart.
	}
	a.tasks.Invalidate()
	fmt.Println("Signed in as", a.session.AuthState().User.Username)
}

func (a *app) register(ctx context.Context) {
	email := a.prompt("Email: ")
	username := a.prompt("Username: ")
	password := a.prompt("Password: ")
	if err := a.session.Register(ctx, email, password, username); err != nil {
		fmt.Println("Registration failed:", err)
		if !a.session.AuthState().IsAuthenticated() {
			return
		}
	}
	a.tasks.Invalidate()
	fmt.Println("Signed in as", a.session.AuthState().User.Username)
}

func (a *app) whoami() {
	state := a.session.AuthState()
	if !state.IsAuthenticated() {
		fmt.Println("Not signed in")
		return
	}
	fmt.Printf("%s <%s>\n", state.User.Username, state.User.Email)
}

func (a *app) list(ctx context.Context, completed bool) {
	if !a.authed() {
		return
	}
	tasks, err := a.tasks.List(ctx)
	if err != nil {
		if api.IsTransportError(err) {
			fmt.Println("Server unreachable, showing local copy")
			tasks = a.mirror.GetAll()
		} else {
			fmt.Println("Failed to list tasks:", err)
			return
		}
	}
	shown := 0
	for _, t := range tasks {
		if t.Completed != completed {
			continue
		}
		printTask(t)
		shown++
	}
	if shown == 0 {
		fmt.Println("No tasks")
	}
}

func (a *app) categories(ctx context.Context) {
	if !a.authed() {
		return
	}
	tasks, err := a.tasks.List(ctx)
	if err != nil {
		fmt.Println("Failed to list tasks:", err)
		return
	}
	for _, c := range models.CategoriesFromTasks(tasks) {
		fmt.Printf("%s: %d\n", c.Name, c.TaskCount)
	}
}

// promptDraft collects the required task fields from the shell.
func (a *app) promptDraft() api.TaskDraft {
	return api.TaskDraft{
		Title:       a.prompt("Title: "),
		Description: a.prompt("Description: "),
		DueDate:     a.prompt("Due date (YYYY-MM-DD): "),
		Priority:    models.Priority(a.prompt("Priority (low/medium/high): ")),
		Category:    a.prompt("Category: "),
	}
}

func (a *app) add(ctx context.Context) {
	if !a.authed() {
		return
	}
	task, err := a.tasks.Create(ctx, a.promptDraft())
	if err != nil {
		fmt.Println("Failed to create task:", err)
		return
	}
	fmt.Println("Created task", task.ID)
}

func (a *app) get(ctx context.Context, id string) {
	if !a.authed() {
		return
	}
	task, err := a.tasks.Get(ctx, id)
	if err != nil {
		fmt.Println("Failed to fetch task:", err)
		return
	}
	printTask(*task)
}

func (a *app) edit(ctx context.Context, id string) {
	if !a.authed() {
		return
	}
	patch := api.TaskPatch{}
	if v := a.prompt("Title (empty to keep): "); v != "" {
		patch.Title = &v
	}
	if v := a.prompt("Description (empty to keep): "); v != "" {
		patch.Description = &v
	}
	if v := a.prompt("Due date (empty to keep): "); v != "" {
		patch.DueDate = &v
	}
	if v := a.prompt("Priority (empty to keep): "); v != "" {
		p := models.Priority(v)
		patch.Priority = &p
	}
	if v := a.prompt("Category (empty to keep): "); v != "" {
		patch.Category = &v
	}
	task, err := a.tasks.Update(ctx, id, patch)
	if err != nil {
		fmt.Println("Failed to update task:", err)
		return
	}
	printTask(*task)
}

func (a *app) done(ctx context.Context, id string) {
	if !a.authed() {
		return
	}
	completed := true
	if _, err := a.tasks.Update(ctx, id, api.TaskPatch{Completed: &completed}); err != nil {
		fmt.Println("Failed to complete task:", err)
		return
	}
	fmt.Println("Task completed")
}

func (a *app) delete(ctx context.Context, id string) {
	if !a.authed() {
		return
	}
	if err := a.tasks.Delete(ctx, id); err != nil {
		fmt.Println("Failed to delete task:", err)
		return
	}
	fmt.Println("Task deleted")
}

func printTask(t models.Task) {
	status := " "
	if t.Completed {
		status = "x"
	}
	fmt.Printf("[%s] %s  %s\n    due %s  priority %s  category %s\n",
		status, t.ID, t.Title, t.DueDate, t.Priority, t.Category)
}

// main parses command-line flags, restores the session, and starts the
// shell.
func main() {
	var (
		baseURL  string
		stateDir string
		showVer  bool
	)

	defaultDir := ".taskkeeper"
	if home, err := os.UserHomeDir(); err == nil {
		defaultDir = filepath.Join(home, ".taskkeeper")
	}

	flag.StringVar(&baseURL, "url", "http://localhost:3000", "server base URL")
	flag.StringVar(&stateDir, "dir", defaultDir, "directory for token and task mirror")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("TaskKeeper Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("warn"); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}

	creds := storage.NewCredentialStore(stateDir)
	mirror := storage.NewTaskMirror(stateDir, log.Log)
	client := api.New(baseURL, creds, nil)
	sess := session.NewController(client, creds, log.Log)
	tasks := cache.New(client, mirror)

	// Restore a previous session from the stored token, if any.
	sess.Restore(context.Background())
	if state := sess.AuthState(); state.IsAuthenticated() {
		fmt.Println("Signed in as", state.User.Username)
	} else {
		fmt.Println("Not signed in. Use 'login' or 'register'.")
	}

	a := &app{
		session: sess,
		tasks:   tasks,
		mirror:  mirror,
		scanner: bufio.NewScanner(os.Stdin),
	}
	repl(a)
}
