package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"devlog/middleware"
)

// isAuthed reports whether the request carries a valid admin session. Public
// reads use it to widen visibility.
func isAuthed(ctx *gin.Context) bool {
	return ctx.GetBool(middleware.ContextAuthedKey)
}

// isDuplicateErr matches unique-constraint violations from the MySQL driver
// (error 1062) and gorm's translated form.
func isDuplicateErr(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
