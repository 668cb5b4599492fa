// Package docs 由swag init根据handler注释生成，修改接口注释后重新执行：
//
//	swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/": {
            "get": {
                "description": "图书、副本、可借副本、作者、类型数量，以及当前会话的访问次数",
                "produces": ["application/json"],
                "tags": ["首页"],
                "summary": "首页统计",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/books": {
            "get": {
                "description": "按书名排序分页，keyword匹配书名或ISBN",
                "produces": ["application/json"],
                "tags": ["图书"],
                "summary": "图书列表",
                "parameters": [
                    {"type": "integer", "description": "页码", "name": "page", "in": "query"},
                    {"type": "integer", "description": "每页条数(最大100)", "name": "page_size", "in": "query"},
                    {"type": "string", "description": "关键字", "name": "keyword", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "需要catalog.add_book能力",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["图书"],
                "summary": "新增图书",
                "parameters": [
                    {"description": "图书信息", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.BookRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/books/{id}": {
            "get": {
                "description": "图书信息、副本列表、书评、可借数量与平均评分",
                "produces": ["application/json"],
                "tags": ["图书"],
                "summary": "图书详情",
                "parameters": [
                    {"type": "integer", "description": "图书ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/instances/{id}/status": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "需要catalog.add_bookinstance；仅有catalog.can_mark_returned时只能把借出/预约改为available",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["副本"],
                "summary": "变更副本状态",
                "parameters": [
                    {"type": "string", "description": "副本ID(UUID)", "name": "id", "in": "path", "required": true},
                    {"description": "目标状态", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SetStatusRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/loans/mine": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["借阅"],
                "summary": "我的借阅",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/users/login": {
            "post": {
                "description": "验证邮箱密码，返回JWT Token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["用户"],
                "summary": "用户登录",
                "parameters": [
                    {"description": "登录信息", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/users/register": {
            "post": {
                "description": "创建新用户账号",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["用户"],
                "summary": "用户注册",
                "parameters": [
                    {"description": "注册信息", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        }
    },
    "definitions": {
        "dto.BookRequest": {
            "type": "object",
            "required": ["isbn", "title"],
            "properties": {
                "title": {"type": "string", "maxLength": 200, "example": "Pride and Prejudice"},
                "isbn": {"type": "string", "example": "9780141439518"},
                "description": {"type": "string", "maxLength": 1000},
                "cover_image": {"type": "string", "maxLength": 500},
                "published_on": {"type": "string", "example": "1813-01-28"},
                "author_id": {"type": "integer"},
                "genre_ids": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "dto.SetStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "example": "checked_out"},
                "borrower_id": {"type": "integer"}
            }
        },
        "dto.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "dto.RegisterRequest": {
            "type": "object",
            "required": ["email", "nickname", "password"],
            "properties": {
                "email": {"type": "string", "example": "reader@example.com"},
                "nickname": {"type": "string", "maxLength": 50, "minLength": 2, "example": "reader"},
                "password": {"type": "string", "maxLength": 20, "minLength": 8, "example": "Passw0rd123"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Library Catalog API",
	Description:      "图书馆目录服务：图书、作者、类型、馆藏副本借阅与书评",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
