// Package pagination drains cursor-paginated Notion endpoints.
//
// Notion hands out an opaque next_cursor with every page, so page N+1 can only
// be requested after page N has arrived. DrainAll therefore fetches strictly
// sequentially and concatenates the pages in the order they were returned.
//
// Example usage:
//
//	posts, err := pagination.DrainAll(ctx, pagination.DefaultConfig(),
//		func(ctx context.Context, cursor *string) (pagination.Page[notion.Page], error) {
//			return notionClient.QueryDatabase(ctx, databaseID, query, cursor)
//		})
//
// The drain:
//   - passes a nil cursor on the first call only
//   - runs every page fetch under its own timeout
//   - discards everything fetched so far when any page fails
//   - stops on repeating cursors instead of looping forever
package pagination
