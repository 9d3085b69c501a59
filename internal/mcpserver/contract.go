package mcpserver

// LeadFormatContract describes the lead record and CSV layout that LLM
// consumers should follow when creating or importing leads.
const LeadFormatContract = `# propdesk Lead Format Contract

A lead is a prospective buyer tracked through the sales pipeline.

## Fields

| Field           | Type    | Notes                                                     |
|-----------------|---------|-----------------------------------------------------------|
| id              | string  | Assigned by propdesk. Never invent ids.                   |
| name            | string  | REQUIRED.                                                 |
| email           | string  | Required by the web form.                                 |
| phone           | string  | Required by the web form. Free text, e.g. +91 9876543210. |
| source          | enum    | website, magicbricks, 99acres, referral, other            |
| status          | enum    | new, contacted, scheduled, closed, lost                   |
| budget          | number  | Non-negative, in rupees. No separators.                   |
| property_type   | enum    | apartment, villa, plot, commercial                        |
| location        | string  | Required by the web form.                                 |
| assigned_agent  | string  | Agent id. Not checked; may point at a removed agent.      |
| notes           | string  | Free text.                                                |

Missing source, status and property type default to other, new and apartment.

## Pipeline

` + "`" + `new -> contacted -> scheduled -> closed | lost` + "`" + `

Stages may be skipped going forward. closed and lost are terminal. When the
server runs with strict status transitions, moving backwards or out of a
terminal status is rejected.

## Communications

Each lead has an append-only history of communications with a type
(whatsapp, email, sms, call), a message, a timestamp and a direction
(inbound, outbound). Use log_communication for calls and inbound messages
and send_message for outbound messages.

## CSV

Exports have exactly this header:

` + "```" + `
Name,Email,Phone,Status,Budget,Location,Created Date
` + "```" + `

String fields are double-quoted with embedded quotes doubled, Budget is a
bare number and Created Date is yyyy-MM-dd.

Imports need a header row. Columns are matched case-insensitively; only Name
is required. Also accepted: Email, Phone, Status, Budget, Location, Source,
Property Type, Notes, Created Date, Assigned Agent. Rows that fail to parse
are skipped and reported.

## Example

` + "```" + `
Name,Email,Phone,Status,Budget,Location,Source,Property Type
"Priya Sharma","priya@example.com","+91 9876543210","new",5000000,"Gurgaon, Sector 45","website","apartment"
` + "```" + `
`
