package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Timetable API",
        "description": "Scheduling conflict detection and resolution engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Schedule", "description": "Conflict engine: validation, audits, resolution"},
        {"name": "TimeSlots", "description": "Slot CRUD plus joint and split groups"},
        {"name": "Constraints", "description": "Scheduling rule registry"},
        {"name": "Reference", "description": "Read-only lookup tables"},
        {"name": "Auth", "description": "Operator authentication"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/validate": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Validate a candidate slot without persisting it",
                "description": "Dry-run conflict check for add, joint and split operations. Conflicts come back as data; only malformed payloads fail.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/conflicts": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Audit a period's schedule for conflicts",
                "parameters": [
                    {"name": "academic_year", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "string"},
                    {"name": "refresh", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/conflicts/resolve": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Auto-resolve schedule conflicts on a working copy",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AutoResolveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/conflicts/report": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Download a conflict report as CSV or PDF",
                "parameters": [
                    {"name": "academic_year", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file"}
                }
            }
        },
        "/schedule/draft": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Place a draft schedule by rotating over free positions",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DraftRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timeslots": {
            "get": {
                "tags": ["TimeSlots"],
                "summary": "List time slots",
                "parameters": [
                    {"name": "academic_year", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "faculty_id", "in": "query", "type": "string"},
                    {"name": "room_id", "in": "query", "type": "string"},
                    {"name": "day_of_week", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["TimeSlots"],
                "summary": "Create a time slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTimeSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Scheduling conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timeslots/{id}": {
            "get": {
                "tags": ["TimeSlots"],
                "summary": "Get one time slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["TimeSlots"],
                "summary": "Update a time slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTimeSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Scheduling conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["TimeSlots"],
                "summary": "Delete a time slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/timeslots/joint": {
            "post": {
                "tags": ["TimeSlots"],
                "summary": "Create a joint session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateJointSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Scheduling conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timeslots/split": {
            "post": {
                "tags": ["TimeSlots"],
                "summary": "Create a split class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSplitClassRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Scheduling conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timeslots/groups/{groupId}": {
            "delete": {
                "tags": ["TimeSlots"],
                "summary": "Delete a joint or split group",
                "parameters": [
                    {"name": "groupId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/constraints": {
            "get": {
                "tags": ["Constraints"],
                "summary": "List registered constraints",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Constraints"],
                "summary": "Register a constraint",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Constraint"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/constraints/{id}": {
            "delete": {
                "tags": ["Constraints"],
                "summary": "Unregister a constraint",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/constraints/dynamic": {
            "delete": {
                "tags": ["Constraints"],
                "summary": "Clear run-scoped constraints",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/departments": {
            "get": {
                "tags": ["Reference"],
                "summary": "List departments",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Reference"],
                "summary": "List courses",
                "parameters": [
                    {"name": "department_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faculty": {
            "get": {
                "tags": ["Reference"],
                "summary": "List active faculty",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms": {
            "get": {
                "tags": ["Reference"],
                "summary": "List rooms",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ValidateSlotRequest": {
            "type": "object",
            "required": ["operation", "day_of_week", "start_time", "end_time", "academic_year", "semester", "year_level"],
            "properties": {
                "operation": {"type": "string", "enum": ["add", "joint", "split"]},
                "day_of_week": {"type": "integer"},
                "start_time": {"type": "string", "example": "09:00"},
                "end_time": {"type": "string", "example": "10:30"},
                "academic_year": {"type": "string"},
                "semester": {"type": "string"},
                "year_level": {"type": "integer"},
                "department_id": {"type": "string"},
                "course_id": {"type": "string"},
                "faculty_id": {"type": "string"},
                "room_id": {"type": "string"},
                "joint_courses": {"type": "array", "items": {"type": "string"}},
                "split_groups": {"type": "array", "items": {"$ref": "#/definitions/SplitGroup"}},
                "exclude_slot_id": {"type": "string"}
            }
        },
        "SplitGroup": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "faculty_id": {"type": "string"},
                "room_id": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "max_students": {"type": "integer"}
            }
        },
        "AutoResolveRequest": {
            "type": "object",
            "required": ["academic_year", "semester"],
            "properties": {
                "academic_year": {"type": "string"},
                "semester": {"type": "string"},
                "max_relaxation": {"type": "integer"},
                "preserve_preferences": {"type": "boolean"},
                "allow_partial_resolution": {"type": "boolean"}
            }
        },
        "DraftRequest": {
            "type": "object",
            "required": ["academic_year", "semester", "days", "start_times", "duration_minutes", "items"],
            "properties": {
                "academic_year": {"type": "string"},
                "semester": {"type": "string"},
                "days": {"type": "array", "items": {"type": "integer"}},
                "start_times": {"type": "array", "items": {"type": "string"}},
                "duration_minutes": {"type": "integer"},
                "items": {"type": "array", "items": {"type": "object"}}
            }
        },
        "CreateTimeSlotRequest": {
            "type": "object",
            "required": ["day_of_week", "start_time", "end_time", "academic_year", "semester", "year_level", "department_id", "course_id", "faculty_id", "room_id"],
            "properties": {
                "day_of_week": {"type": "integer"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "academic_year": {"type": "string"},
                "semester": {"type": "string"},
                "year_level": {"type": "integer"},
                "department_id": {"type": "string"},
                "course_id": {"type": "string"},
                "faculty_id": {"type": "string"},
                "room_id": {"type": "string"},
                "lesson_kind": {"type": "string"}
            }
        },
        "CreateJointSessionRequest": {
            "type": "object",
            "required": ["day_of_week", "start_time", "end_time", "academic_year", "semester", "year_level", "department_id", "course_ids", "faculty_id", "room_id"],
            "properties": {
                "day_of_week": {"type": "integer"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "academic_year": {"type": "string"},
                "semester": {"type": "string"},
                "year_level": {"type": "integer"},
                "department_id": {"type": "string"},
                "course_ids": {"type": "array", "items": {"type": "string"}},
                "faculty_id": {"type": "string"},
                "room_id": {"type": "string"}
            }
        },
        "CreateSplitClassRequest": {
            "type": "object",
            "required": ["day_of_week", "start_time", "end_time", "academic_year", "semester", "year_level", "department_id", "course_id", "split_groups"],
            "properties": {
                "day_of_week": {"type": "integer"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "academic_year": {"type": "string"},
                "semester": {"type": "string"},
                "year_level": {"type": "integer"},
                "department_id": {"type": "string"},
                "course_id": {"type": "string"},
                "faculty_id": {"type": "string"},
                "room_id": {"type": "string"},
                "split_groups": {"type": "array", "items": {"$ref": "#/definitions/SplitGroup"}}
            }
        },
        "Constraint": {
            "type": "object",
            "required": ["id", "name", "type", "category", "importance"],
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "type": {"type": "string", "enum": ["hard", "soft"]},
                "category": {"type": "string"},
                "importance": {"type": "integer"},
                "can_relax": {"type": "boolean"},
                "relaxation_penalty": {"type": "number"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
