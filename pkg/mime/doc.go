// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package mime builds the multipart/form-data bodies used to upload documents.

# Structure

The JSON request body travels as the first part; every document follows
in its own part:

	Content-Type: multipart/form-data; boundary="----=_Part_..."

	------=_Part_...
	Content-Disposition: form-data; name="post_body"
	Content-Type: application/json

	{"emailSubject": "...", "documents": [...], "recipients": {...}}
	------=_Part_...
	Content-Disposition: file; documentid=1; name="file1"; filename="contract.pdf"
	Content-Type: application/pdf

	[document bytes]

The documentid parameter ties a part to the documentId used in the JSON
body. It defaults to the 1-based position of the file.

# Usage

	form := mime.NewForm(postBody, []mime.File{{Path: "contract.pdf", Data: data}})
	body, contentType, err := form.Serialize()

Parse reverses Serialize, which the call logger uses to redact file parts.
*/
package mime
