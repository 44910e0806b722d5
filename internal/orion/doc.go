// Package orion is the client for the context-broker entity store.
//
// Entities are an id, a type tag and a map of attribute envelopes. Each
// envelope is decoded into AttributeValue, a closed union of Text, Number,
// DateTime, Boolean and StructuredValue payloads; unknown tags are decode
// errors rather than silent pass-throughs.
//
// # Operations
//
//	client, err := orion.New(cfg.Orion, nil)
//	sensors, err := client.List(ctx, "Sensor")
//	zone, err := client.Get(ctx, "WarehouseZone:1a2b3c4d", "WarehouseZone")
//	err = client.Create(ctx, entity)
//	err = client.PatchAttributes(ctx, id, attrs)
//	err = client.Delete(ctx, id)
//
// # Error Handling
//
// Failures map onto sentinel errors: ErrNotFound (404), ErrConflict
// (duplicate id), ErrTransport (network failure or any other non-2xx).
// List never converts a failure into an empty result.
//
// # Upsert
//
// Upsert implements probe-then-create-or-patch with a single
// patch retry when a create races another writer.
package orion
