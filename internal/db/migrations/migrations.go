// Package migrations содержит embedded SQL-миграции для goose.
// Каталог postgres/ и sqlite/ держат одну и ту же схему статистики
// в синтаксисе соответствующего диалекта.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
