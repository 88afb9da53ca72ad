// Package dbus exposes the task store to other desktop processes over the
// session bus. It implements the org.tasknest.Tasknest interface: task
// queries and mutations (get_task_ids, get_task, new_task, modify_task,
// ...) plus view-manager pass-throughs (open_task_editor,
// show_task_browser, ...), and a typed client for the same surface.
package dbus
