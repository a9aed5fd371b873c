// Package types defines the ContentStore and SchemaProvider interfaces,
// content entity types, and standard errors for the blueprint tool.
// The interfaces model the host content runtime and the schema extension
// at their boundary; implementations live under internal/.
package types
