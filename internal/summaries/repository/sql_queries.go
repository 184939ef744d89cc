package repository

const (
	createRunQuery = `INSERT INTO run_records (record_id, run_id, url, video_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING *`

	updateTranscriptQuery = `UPDATE run_records
		SET transcript = $2, lang = $3, updated_at = now()
		WHERE record_id = $1`

	updateSummariesQuery = `UPDATE run_records
		SET clean_text = $2,
		    full_summary = $3,
		    middle_summary = $4,
		    short_summary = $5,
		    resources = $6,
		    updated_at = now()
		WHERE record_id = $1`

	getRunByIDQuery = `SELECT record_id, run_id, url, video_id,
		COALESCE(transcript, '') AS transcript,
		COALESCE(lang, '') AS lang,
		COALESCE(clean_text, '') AS clean_text,
		COALESCE(full_summary, '') AS full_summary,
		COALESCE(middle_summary, '') AS middle_summary,
		COALESCE(short_summary, '') AS short_summary,
		COALESCE(resources, '') AS resources,
		created_at, updated_at
		FROM run_records
		WHERE run_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
)
