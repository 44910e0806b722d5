// Package warehouse defines the typed warehouse records and maps store
// entities onto them.
//
// The Normalizer turns an orion.Entity into a Sensor, InventoryItem,
// WarehouseZone, Alert, Order, Shipment, User, Report or SystemSetting,
// substituting a default for every absent or mistyped attribute and deriving
// the display statuses (stock level, sensor health). The Repository combines
// store reads with normalization and carries the dashboard's write paths:
// orders, shipments, reports, users and inventory deletion.
package warehouse
