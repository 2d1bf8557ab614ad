package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/social-feed/pkg/response"
)

const (
	// CtxExternalID 外部认证方下发的 subject
	CtxExternalID = "external_id"
	CtxFirstName  = "first_name"
	CtxLastName   = "last_name"
	CtxUsername   = "username"
	CtxEmail      = "email"
	CtxImage      = "image"
)

// Auth 解析 Bearer JWT 并把外部身份写入请求上下文。
// 无 token 时放行为匿名请求（feed 对匿名访客返回空，不报错）；
// token 非法或 iss 不匹配则 401。
func Auth(secret, issuer string) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == header {
			response.Unauthorized(c, "malformed authorization header")
			c.Abort()
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, opts...)
		if err != nil || !token.Valid {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Unauthorized(c, "invalid claims")
			c.Abort()
			return
		}

		c.Set(CtxExternalID, strClaim(claims, "sub"))
		c.Set(CtxFirstName, strClaim(claims, "first_name"))
		c.Set(CtxLastName, strClaim(claims, "last_name"))
		c.Set(CtxUsername, strClaim(claims, "username"))
		c.Set(CtxEmail, strClaim(claims, "email"))
		c.Set(CtxImage, strClaim(claims, "image"))
		c.Next()
	}
}

func strClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
