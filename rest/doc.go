/*
Package rest exposes the record types of a resource.Service as a REST API.

Routes are derived from the record type index:

	/{type}                  GET (list), POST (create), DELETE (clear)
	/{type}/{id}             GET, PUT (persist), PATCH (merge patch), DELETE
	/{type}/{id}/{relation}  GET, POST (create or attach), DELETE (unlink)

{type} is a record type name or table and {relation} an association name or
target type name. Lists accept the where (JSON object), sort (comma separated
fields, prefix with - to invert), limit, offset and include (comma separated
association names or *) query-string parameters.

Payloads may embed related records under association names; they are
persisted in the same transaction as the root record:

	POST /users
	{"name": "Foo", "Tasks": [{"name": "Task"}, 42]}

creates the user, creates a task linked to it and attaches task 42.
*/
package rest
