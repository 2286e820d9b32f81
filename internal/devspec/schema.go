package devspec

import "github.com/shinji-kodama/dev-compose/internal/schema"

// environmentField is a string-to-string map defaulting to empty.
var environmentField = schema.Field{
	Type:    schema.KindObject,
	Default: schema.NewMap(),
	Shape:   schema.Collection{Members: schema.Field{Type: schema.KindString}},
}

// actionField validates one handler step and maps it to an Action.
var actionField = schema.Field{
	Type: schema.KindObject,
	Shape: schema.Object{Schema: schema.Schema{
		{Name: "service", Field: schema.Field{Type: schema.KindString}},
		{Name: "user", Field: schema.Field{Type: schema.KindString}},
		{Name: "working_dir", Field: schema.Field{Type: schema.KindString}},
		{Name: "environment", Field: environmentField},
		{Name: "command", Field: schema.Field{Type: schema.KindString}},
		{Name: "action", Field: schema.Field{Type: schema.KindString}},
		{Name: "handler", Field: schema.Field{Type: schema.KindString}},
		{Name: "args", Field: schema.Field{
			Type:  schema.KindArray,
			Shape: schema.Collection{Members: schema.Field{Type: schema.KindString}},
		}},
	}},
	Validate: validateAction,
	Map:      decodeAction,
}

// Schema describes a dev.yml document.
var Schema = schema.Schema{
	{Name: "version", Field: schema.Field{Type: schema.KindString}},
	{Name: "buildkit", Field: schema.Field{Type: schema.KindBoolean, Default: true}},
	{Name: "services", Field: schema.Field{Type: schema.KindObject}},
	{Name: "networks", Field: schema.Field{Type: schema.KindObject}},
	{Name: "volumes", Field: schema.Field{Type: schema.KindObject}},
	{Name: "command_defaults", Field: schema.Field{
		Type: schema.KindObject,
		Default: schema.MapOf(
			"service", nil,
			"user", nil,
			"working_dir", nil,
			"environment", schema.NewMap(),
		),
		Shape: schema.Object{Schema: schema.Schema{
			{Name: "service", Field: schema.Field{Type: schema.KindString}},
			{Name: "user", Field: schema.Field{Type: schema.KindString}},
			{Name: "working_dir", Field: schema.Field{Type: schema.KindString}},
			{Name: "environment", Field: environmentField},
		}},
	}},
	{Name: "handlers", Field: schema.Field{
		Type:    schema.KindObject,
		Default: schema.NewMap(),
		Shape: schema.Collection{Members: schema.Field{
			Type:  schema.KindArray,
			Shape: schema.Collection{Members: actionField},
		}},
	}},
}

// composeKeys are the top-level sections handed to docker compose.
var composeKeys = []string{"version", "services", "networks", "volumes"}
