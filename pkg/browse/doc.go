/*
Package browse implements the read-side conversation patterns layered on
top of the flow engine's widget protocol: paginated entity browsers with
filter tabs and row actions, single-entity dashboards, text search, and a
settings panel that edits fields through regular widgets.

Controllers are stateless between updates; per-user view state (page,
filter, search query, field being edited) lives in the shared session
manager and expires with it.
*/
package browse
