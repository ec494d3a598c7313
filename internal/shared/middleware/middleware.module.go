package middleware

import (
	"go.uber.org/fx"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/middleware/security"
)

// Module regroupe tous les providers des middlewares
var Module = fx.Options(
	fx.Provide(security.CORSMiddleware),
)
