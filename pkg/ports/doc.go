/*
Package ports defines the driven ports (interfaces) of the story graph engine.

These interfaces decouple the engine from storage, so the same editor runs over
a directory of YAML files, a Loam repository, Redis or a remote store service.

# Key Interfaces

  - UnitStore: list, read, write, delete and rename Story Unit documents.
  - Watchable: optional change notifications for stores edited externally.

RunUnitStoreContract is the conformance suite every UnitStore adapter runs in
its tests.
*/
package ports
