/*
Package ddb implements store.EntityStore over AWS DynamoDB.

Each store maps to one table (provider prefix + store name) with a fixed
PK/SK string key schema: SK carries the record key, PK carries the partition
key, or the record key again for unpartitioned types. Entities are marshaled
with the attributevalue feature package; the key attributes are injected
alongside the entity's own fields.

Existence preconditions ride on conditional writes: Insert uses
attribute_not_exists and maps ConditionalCheckFailedException to
errors.ErrAlreadyExists, Update uses attribute_exists and maps it to
errors.ErrNotFound. That makes the single-record write the unit of atomicity,
which is exactly what the audit decorator assumes of its base store.

Integration tests run against a real table and are tagged "integration";
credentials come from the environment, loaded via godotenv.
*/
package ddb
