package mcp

import "github.com/mark3labs/mcp-go/mcp"

var searchToolDef = mcp.NewTool("clip_search",
	mcp.WithDescription("Search clipboard history. Matches clips whose text contains query "+
		"(ASCII letters match either case, no wildcards). Pinned clips come first, then newest first. "+
		"An empty query lists the given folder, or every clip if no folder is given."),
	mcp.WithString("query", mcp.Description("Substring to look for")),
	mcp.WithString("folder", mcp.Description("Folder to list when query is empty")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var listToolDef = mcp.NewTool("clip_list",
	mcp.WithDescription("List the clips in one folder, pinned first then newest first."),
	mcp.WithString("folder", mcp.Description("Folder name (default: Inbox)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var foldersToolDef = mcp.NewTool("clip_folders",
	mcp.WithDescription("List folder names: Inbox first, then every other folder in use, sorted."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var getToolDef = mcp.NewTool("clip_get",
	mcp.WithDescription("Fetch one clip by id, including its full text."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Clip id")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var countToolDef = mcp.NewTool("clip_count",
	mcp.WithDescription("Count stored clips. With content, also report how many clips have exactly that text."),
	mcp.WithString("content", mcp.Description("Exact text to count")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var addToolDef = mcp.NewTool("clip_add",
	mcp.WithDescription("Add text to the history as if it had been copied. Surrounding whitespace is "+
		"trimmed; nothing is stored if a clip with the same text exists."),
	mcp.WithString("content", mcp.Required(), mcp.Description("Text to store")),
)

var pinToolDef = mcp.NewTool("clip_pin",
	mcp.WithDescription("Pin or unpin a clip. Without pinned, the current state is toggled."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Clip id")),
	mcp.WithBoolean("pinned", mcp.Description("true to pin, false to unpin")),
)

var moveToolDef = mcp.NewTool("clip_move",
	mcp.WithDescription("Move a clip to a folder. Folders need no setup; any name works."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Clip id")),
	mcp.WithString("folder", mcp.Required(), mcp.Description("Destination folder")),
)

var deleteToolDef = mcp.NewTool("clip_delete",
	mcp.WithDescription("Permanently delete a clip."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Clip id")),
	mcp.WithDestructiveHintAnnotation(true),
)
