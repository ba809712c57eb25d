package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Teamwork API",
        "description": "Team formation, stages and divisions for major assignments",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {"BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}},
    "tags": [
        {"name": "MajorAssignments", "description": "Team projects defined by teachers"},
        {"name": "Teams", "description": "Student-led teams"},
        {"name": "Invitations", "description": "Joining a team"},
        {"name": "LeaveRequests", "description": "Leaving a team with leader or teacher approval"},
        {"name": "DissolveRequests", "description": "Dissolving a team"},
        {"name": "Confirmation", "description": "Teacher sign-off that locks membership"},
        {"name": "Stages", "description": "Time-boxed phases and division roles"},
        {"name": "Divisions", "description": "Per-stage role assignment inside a team"},
        {"name": "Notifications", "description": "Inbox"},
        {"name": "Observability", "description": "Workflow counters"}
    ],
    "paths": {
        "/major-assignments": {
            "post": {
                "tags": ["MajorAssignments"],
                "summary": "Create a major assignment",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/CreateMajorAssignmentRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            },
            "get": {
                "tags": ["MajorAssignments"],
                "summary": "List major assignments",
                "parameters": [
                    {"name": "class_id", "in": "query", "type": "string", "description": "Required for students"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/major-assignments/{id}": {
            "get": {
                "tags": ["MajorAssignments"],
                "summary": "Get a major assignment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Major assignment ID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            },
            "patch": {
                "tags": ["MajorAssignments"],
                "summary": "Update a major assignment",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Major assignment ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/UpdateMajorAssignmentRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            },
            "delete": {
                "tags": ["MajorAssignments"],
                "summary": "Delete a major assignment with its teams and stages",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Major assignment ID"}],
                "responses": {
                    "204": {"description": "No Content"},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/major-assignments/{id}/teams": {
            "post": {
                "tags": ["Teams"],
                "summary": "Create a team led by the caller",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Major assignment ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/CreateTeamRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            },
            "get": {
                "tags": ["Teams"],
                "summary": "List teams of a major assignment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Major assignment ID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/major-assignments/{id}/teams/me": {
            "get": {
                "tags": ["Teams"],
                "summary": "Get the caller's team",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Major assignment ID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/major-assignments/{id}/stages": {
            "post": {
                "tags": ["Stages"],
                "summary": "Define a stage",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Major assignment ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/CreateStageRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            },
            "get": {
                "tags": ["Stages"],
                "summary": "List stages",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Major assignment ID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/teams/{teamId}": {
            "get": {
                "tags": ["Teams"],
                "summary": "Get a team",
                "parameters": [{"name": "teamId", "in": "path", "required": true, "type": "string", "description": "Team ID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            },
            "delete": {
                "tags": ["Teams"],
                "summary": "Delete a team",
                "parameters": [{"name": "teamId", "in": "path", "required": true, "type": "string", "description": "Team ID"}],
                "responses": {
                    "204": {"description": "No Content"},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/teams/{teamId}/invitations": {
            "post": {
                "tags": ["Invitations"],
                "summary": "Invite a classmate",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string", "description": "Team ID"},
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/InviteRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/teams/{teamId}/leave-requests": {
            "post": {
                "tags": ["LeaveRequests"],
                "summary": "Ask to leave a team",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string", "description": "Team ID"},
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ReasonRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            },
            "get": {
                "tags": ["LeaveRequests"],
                "summary": "List leave requests of a team",
                "parameters": [{"name": "teamId", "in": "path", "required": true, "type": "string", "description": "Team ID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/teams/{teamId}/dissolve-requests": {
            "post": {
                "tags": ["DissolveRequests"],
                "summary": "Ask the teacher to dissolve the team",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string", "description": "Team ID"},
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ReasonRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/teams/{teamId}/confirmation-request": {
            "post": {
                "tags": ["Confirmation"],
                "summary": "Ask the teacher to confirm the team",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string", "description": "Team ID"},
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ConfirmationRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/teams/{teamId}/confirm": {
            "post": {
                "tags": ["Confirmation"],
                "summary": "Confirm and lock a team",
                "parameters": [{"name": "teamId", "in": "path", "required": true, "type": "string", "description": "Team ID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/teams/{teamId}/reject": {
            "post": {
                "tags": ["Confirmation"],
                "summary": "Reject a confirmation request",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string", "description": "Team ID"},
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/RejectTeamRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/teams/{teamId}/stages/{stageId}/divisions": {
            "put": {
                "tags": ["Divisions"],
                "summary": "Replace a team's divisions for a stage",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string", "description": "Team ID"},
                    {"name": "stageId", "in": "path", "required": true, "type": "string", "description": "Stage ID"},
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/AssignDivisionsRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            },
            "get": {
                "tags": ["Divisions"],
                "summary": "List a team's divisions for a stage",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string", "description": "Team ID"},
                    {"name": "stageId", "in": "path", "required": true, "type": "string", "description": "Stage ID"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/invitations": {
            "get": {
                "tags": ["Invitations"],
                "summary": "List invitations addressed to the caller",
                "parameters": [
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string",
                        "description": "PENDING, ACCEPTED, REJECTED or CANCELLED"
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/invitations/{invitationId}/respond": {
            "post": {
                "tags": ["Invitations"],
                "summary": "Accept or reject an invitation",
                "parameters": [
                    {
                        "name": "invitationId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Invitation ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/RespondInvitationRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/invitations/{invitationId}/resend": {
            "post": {
                "tags": ["Invitations"],
                "summary": "Re-invite a student who rejected",
                "parameters": [
                    {
                        "name": "invitationId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Rejected invitation ID"
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/leave-requests/{requestId}/decision": {
            "post": {
                "tags": ["LeaveRequests"],
                "summary": "Approve or reject a leave request",
                "parameters": [
                    {
                        "name": "requestId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Leave request ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/DecisionRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/leave-requests/{requestId}/escalate": {
            "post": {
                "tags": ["LeaveRequests"],
                "summary": "Escalate a rejected leave request to the teacher",
                "parameters": [
                    {
                        "name": "requestId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Leave request ID"
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/dissolve-requests/{requestId}/decision": {
            "post": {
                "tags": ["DissolveRequests"],
                "summary": "Approve or reject a dissolve request",
                "parameters": [
                    {
                        "name": "requestId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Dissolve request ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/DecisionRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/stages/{stageId}": {
            "get": {
                "tags": ["Stages"],
                "summary": "Get a stage",
                "parameters": [{"name": "stageId", "in": "path", "required": true, "type": "string", "description": "Stage ID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            },
            "delete": {
                "tags": ["Stages"],
                "summary": "Delete a stage",
                "parameters": [{"name": "stageId", "in": "path", "required": true, "type": "string", "description": "Stage ID"}],
                "responses": {
                    "204": {"description": "No Content"},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/stages/{stageId}/transition": {
            "post": {
                "tags": ["Stages"],
                "summary": "Activate, complete, restart, lock or unlock a stage",
                "parameters": [
                    {"name": "stageId", "in": "path", "required": true, "type": "string", "description": "Stage ID"},
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/StageTransitionRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/stages/{stageId}/roles": {
            "post": {
                "tags": ["Stages"],
                "summary": "Define a division role",
                "parameters": [
                    {"name": "stageId", "in": "path", "required": true, "type": "string", "description": "Stage ID"},
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/CreateDivisionRoleRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            },
            "get": {
                "tags": ["Stages"],
                "summary": "List division roles",
                "parameters": [{"name": "stageId", "in": "path", "required": true, "type": "string", "description": "Stage ID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/division-roles/{roleId}": {
            "delete": {
                "tags": ["Stages"],
                "summary": "Delete a division role",
                "parameters": [
                    {
                        "name": "roleId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Division role ID"
                    }
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List the caller's notifications",
                "parameters": [
                    {"name": "unread", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/notifications/{notificationId}/read": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "parameters": [
                    {
                        "name": "notificationId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Notification ID"
                    }
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/notifications/read-all": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark every notification as read",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        },
        "/metrics/workflow": {
            "get": {
                "tags": ["Observability"],
                "summary": "Workflow counters snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "default": {"description": "Error envelope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                },
                "security": [{"BearerAuth": []}]
            }
        }
    },
    "definitions": {
        "CreateMajorAssignmentRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "string"},
                "title": {"type": "string", "maxLength": 200},
                "description": {"type": "string"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "min_team_size": {"type": "integer", "minimum": 1, "default": 2},
                "max_team_size": {"type": "integer", "minimum": 1, "default": 5},
                "teacher_ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["class_id", "title"]
        },
        "UpdateMajorAssignmentRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "maxLength": 200},
                "description": {"type": "string"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "min_team_size": {"type": "integer", "minimum": 1},
                "max_team_size": {"type": "integer", "minimum": 1},
                "teacher_ids": {"type": "array", "items": {"type": "string"}},
                "active": {"type": "boolean"}
            }
        },
        "CreateTeamRequest": {"type": "object", "properties": {"name": {"type": "string", "maxLength": 120}}, "required": ["name"]},
        "InviteRequest": {"type": "object", "properties": {"invitee_id": {"type": "string"}}, "required": ["invitee_id"]},
        "RespondInvitationRequest": {"type": "object", "properties": {"accept": {"type": "boolean"}}, "required": ["accept"]},
        "ReasonRequest": {"type": "object", "properties": {"reason": {"type": "string", "maxLength": 1000}}, "required": ["reason"]},
        "ConfirmationRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string", "maxLength": 1000, "description": "Required when the team size is out of range"}
            }
        },
        "RejectTeamRequest": {"type": "object", "properties": {"reason": {"type": "string", "maxLength": 1000}}, "required": ["reason"]},
        "DecisionRequest": {
            "type": "object",
            "properties": {"approve": {"type": "boolean"}, "comment": {"type": "string", "maxLength": 1000}},
            "required": ["approve"]
        },
        "CreateStageRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "maxLength": 120},
                "description": {"type": "string"},
                "stage_type": {"type": "string", "enum": ["TEAM_FORMATION", "DIVISION", "CUSTOM"]},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "order": {"type": "integer", "minimum": 0}
            },
            "required": ["name", "stage_type", "start_date", "end_date"]
        },
        "StageTransitionRequest": {
            "type": "object",
            "properties": {"action": {"type": "string", "enum": ["activate", "complete", "restart", "lock", "unlock"]}},
            "required": ["action"]
        },
        "CreateDivisionRoleRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "maxLength": 120},
                "description": {"type": "string"},
                "is_required": {"type": "boolean"}
            },
            "required": ["name"]
        },
        "DivisionRoleInput": {
            "type": "object",
            "properties": {
                "role_name": {"type": "string", "maxLength": 120},
                "role_description": {"type": "string"},
                "division_role_id": {"type": "string"},
                "member_ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["role_name", "member_ids"]
        },
        "AssignDivisionsRequest": {
            "type": "object",
            "properties": {"roles": {"type": "array", "items": {"$ref": "#/definitions/DivisionRoleInput"}}},
            "required": ["roles"]
        },
        "Pagination": {
            "type": "object",
            "properties": {"page": {"type": "integer"}, "page_size": {"type": "integer"}, "total_count": {"type": "integer"}}
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "kind": {
                    "type": "string",
                    "enum": [
                        "PERMISSION_DENIED",
                        "INVALID_STATE",
                        "CONSTRAINT_VIOLATION",
                        "NOT_FOUND",
                        "VALIDATION",
                        "UNAUTHORIZED",
                        "INTERNAL"
                    ]
                },
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
