/*
Package config loads runtime settings for the entitynorm command.

Settings are read from a YAML file, then overridden by environment variables
(optionally seeded from a .env file), then completed with defaults:

	schemas: schemas.yaml
	rootSchema: articles
	log:
	  level: info
	storage:
	  backend: dynamodb
	  persist: true
	  dynamodb:
	    table: entities
	    region: us-east-1

Environment overrides: ENTITYNORM_SCHEMAS, ENTITYNORM_ROOT_SCHEMA,
ENTITYNORM_LOG_LEVEL, ENTITYNORM_LOG_JSON, ENTITYNORM_STORAGE_BACKEND,
AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_REGION, AWS_DDB_TABLE and
DDB_ENDPOINT.
*/
package config
