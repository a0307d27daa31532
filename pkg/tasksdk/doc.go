/*
Package tasksdk provides the wire types and a client for the tasks API.

The same request, response and error types are used by the server when
writing responses, so the two sides cannot drift.

Create a Client for public endpoints and to log in:

	client := tasksdk.NewClient("http://localhost:8080")

	user, err := client.Register(ctx, "alice", "pw1")
	session, err := client.Login(ctx, "alice", "pw1")

A Session carries the token pair. When a request comes back 401 the Session
refreshes its access token once and retries:

	task, err := session.CreateTask(ctx, tasksdk.TaskRequest{Title: "t1"})
	tasks, err := session.ListTasks(ctx, tasksdk.StatusDone)
	err = session.Logout(ctx)

Errors returned by the API are *APIError values and can be matched with
errors.Is against the predefined errors:

	if errors.Is(err, tasksdk.ErrForbidden) {
		// not the owner
	}
*/
package tasksdk
