package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Maktab API",
        "description": "School records API: timetable, attendance, grades, ranking",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Subjects", "description": "Subject catalog"},
        {"name": "Teachers", "description": "Teaching profiles and teacher views"},
        {"name": "Classes", "description": "Classes, rosters, rankings, gradebooks"},
        {"name": "Students", "description": "Student records and overviews"},
        {"name": "Schedule", "description": "Timetable slots"},
        {"name": "Attendance", "description": "Attendance marking"},
        {"name": "Grades", "description": "Grade entries"},
        {"name": "Enrollment", "description": "Operator enrollment"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in with phone and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "List timetable slots",
                "parameters": [
                    {"name": "class", "in": "query", "type": "integer"},
                    {"name": "teacher", "in": "query", "type": "integer"},
                    {"name": "weekday", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Slots", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schedule"],
                "summary": "Create a timetable slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Teacher overlap", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/{id}": {
            "put": {
                "tags": ["Schedule"],
                "summary": "Update a timetable slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated"},
                    "409": {"description": "Teacher overlap"}
                }
            },
            "delete": {
                "tags": ["Schedule"],
                "summary": "Delete a timetable slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Read marks back for a grid",
                "parameters": [
                    {"name": "class", "in": "query", "required": true, "type": "integer"},
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "schedule", "in": "query", "type": "integer"},
                    {"name": "subject", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Marks", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Write one attendance mark",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "Upserted"},
                    "400": {"description": "Missing anchor or unknown schedule slot"}
                }
            }
        },
        "/attendance/bulk": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark a class grid for one date",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkMarkRequest"}}
                ],
                "responses": {
                    "200": {"description": "Ids plus skipped entries", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/bulk": {
            "post": {
                "tags": ["Grades"],
                "summary": "Write a gradebook column",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkSetRequest"}}
                ],
                "responses": {
                    "200": {"description": "Ids plus skipped entries"}
                }
            }
        },
        "/classes/{id}/ranking": {
            "get": {
                "tags": ["Classes"],
                "summary": "Class ranking by overall average",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "term", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Ordered ranking", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/overview": {
            "get": {
                "tags": ["Students"],
                "summary": "Student overview",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "term", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Overview", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not a guardian of this student"}
                }
            }
        },
        "/enroll": {
            "post": {
                "tags": ["Enrollment"],
                "summary": "Enroll a student and provision the parent account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Student, guardian link, one-time password"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "phone": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ScheduleRequest": {
            "type": "object",
            "properties": {
                "class": {"type": "integer"},
                "subject": {"type": "integer"},
                "teacher": {"type": "integer"},
                "weekday": {"type": "integer"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "room": {"type": "string"}
            }
        },
        "AttendanceRequest": {
            "type": "object",
            "properties": {
                "student": {"type": "integer"},
                "date": {"type": "string"},
                "status": {"type": "string"},
                "class": {"type": "integer"},
                "subject": {"type": "integer"},
                "schedule": {"type": "integer"},
                "note": {"type": "string"}
            }
        },
        "BulkMarkRequest": {
            "type": "object",
            "properties": {
                "class": {"type": "integer"},
                "date": {"type": "string"},
                "subject": {"type": "integer"},
                "schedule": {"type": "integer"},
                "entries": {"type": "array", "items": {"type": "object"}}
            }
        },
        "BulkSetRequest": {
            "type": "object",
            "properties": {
                "subject": {"type": "integer"},
                "date": {"type": "string"},
                "term": {"type": "string"},
                "type": {"type": "string"},
                "entries": {"type": "array", "items": {"type": "object"}}
            }
        },
        "EnrollRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "class": {"type": "integer"},
                "parent_name": {"type": "string"},
                "parent_phone": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
